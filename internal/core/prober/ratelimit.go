package prober

import (
	"net/http"
	"sort"

	"github.com/skyops/flightprobe/internal/core"
)

// rateLimitHeaders is the fixed table of known rate-limit header names,
// covering both the x-prefixed and unprefixed conventions, in report order.
var rateLimitHeaders = []core.HeaderValue{
	{Name: "x-ratelimit-limit", Label: "Rate Limit Total"},
	{Name: "x-ratelimit-remaining", Label: "Rate Limit Remaining"},
	{Name: "x-ratelimit-reset", Label: "Rate Limit Reset Time"},
	{Name: "ratelimit-limit", Label: "Rate Limit Total"},
	{Name: "ratelimit-remaining", Label: "Rate Limit Remaining"},
	{Name: "ratelimit-reset", Label: "Rate Limit Reset Time"},
}

// SnapshotRateLimits scans a response header set for known rate-limit
// headers. Absent names are omitted, never defaulted. When no known name is
// present the entire header set is captured instead, so a provider using an
// unknown convention can still be diagnosed from the report.
func SnapshotRateLimits(headers http.Header) *core.RateLimitSnapshot {
	if headers == nil {
		return nil
	}

	snapshot := &core.RateLimitSnapshot{}
	for _, known := range rateLimitHeaders {
		value := headers.Get(known.Name)
		if value == "" {
			continue
		}
		snapshot.Known = append(snapshot.Known, core.HeaderValue{
			Name:  known.Name,
			Label: known.Label,
			Value: value,
		})
	}
	if len(snapshot.Known) > 0 {
		return snapshot
	}

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range headers.Values(name) {
			snapshot.Fallback = append(snapshot.Fallback, core.HeaderValue{Name: name, Value: value})
		}
	}
	return snapshot
}
