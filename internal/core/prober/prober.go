// Package prober implements the connectivity probe against the AviationStack
// API. Each probe issues exactly one GET request and folds every possible
// failure mode into a core.Outcome, so call sites handle classification
// rather than error-type dispatch.
package prober

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skyops/flightprobe/internal/core"
)

const maxBodyBytes = 1 << 20

// Descriptor names one endpoint probe: a path relative to the base URL and
// the query parameters to send with it. The credential is added by the
// prober under the provider's fixed access_key parameter.
type Descriptor struct {
	Probe  core.ProbeType
	Path   string
	Params url.Values
}

// FlightsDescriptor builds the real-time flights probe. The limit keeps the
// response small; this is a connectivity check, not a data fetch.
func FlightsDescriptor(limit int) Descriptor {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	return Descriptor{Probe: core.ProbeTypeFlights, Path: "/flights", Params: params}
}

// AirportsDescriptor builds the airport search probe.
func AirportsDescriptor(search string, limit int) Descriptor {
	params := url.Values{}
	params.Set("search", search)
	params.Set("limit", fmt.Sprintf("%d", limit))
	return Descriptor{Probe: core.ProbeTypeAirports, Path: "/airports", Params: params}
}

// Prober performs connectivity probes against the AviationStack API.
type Prober struct {
	Client      *http.Client
	BaseURL     string
	APIKey      string
	ToolVersion string
	Clock       func() time.Time
}

// dataEnvelope matches the provider's success shape. Records stay raw so
// the first one passes through to the report verbatim.
type dataEnvelope struct {
	Data []json.RawMessage `json:"data"`
}

// Probe issues one synchronous GET for the descriptor and classifies the
// result. It never returns a Go error for network or provider failures;
// those become Transport or APIError outcomes. The only error returns are
// misconfiguration (empty credential) and request construction failures.
func (p *Prober) Probe(ctx context.Context, desc Descriptor) (*core.Outcome, error) {
	if p == nil || strings.TrimSpace(p.APIKey) == "" {
		return nil, errors.New("prober requires an API key")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	requestedAt := p.now()

	baseURL := p.baseURL()
	params := url.Values{}
	for key, values := range desc.Params {
		for _, value := range values {
			params.Add(key, value)
		}
	}
	params.Set("access_key", p.APIKey)

	reqURL := baseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(desc.Path, "/")}).String() + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return p.outcome(desc.Probe, requestedAt, baseURL.String(), func(o *core.Outcome) {
			o.Class = core.ClassificationTransport
			o.Transport = &core.TransportFailure{Kind: transportKind(err), Detail: err.Error()}
		}), nil
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	snapshot := SnapshotRateLimits(resp.Header)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return p.outcome(desc.Probe, requestedAt, baseURL.String(), func(o *core.Outcome) {
			o.Class = core.ClassificationTransport
			o.StatusCode = resp.StatusCode
			o.Transport = &core.TransportFailure{Kind: core.TransportKindConnection, Detail: err.Error(), StatusCode: resp.StatusCode}
			o.RateLimits = snapshot
		}), nil
	}

	var generic any
	if decodeErr := json.Unmarshal(body, &generic); decodeErr != nil {
		// Unparseable body: an error status explains itself, anything
		// else is a decode failure.
		kind := core.TransportKindDecode
		detail := decodeErr.Error()
		if resp.StatusCode >= 400 {
			kind = core.TransportKindHTTPStatus
			detail = resp.Status
		}
		return p.outcome(desc.Probe, requestedAt, baseURL.String(), func(o *core.Outcome) {
			o.Class = core.ClassificationTransport
			o.StatusCode = resp.StatusCode
			o.Transport = &core.TransportFailure{Kind: kind, Detail: detail, StatusCode: resp.StatusCode}
			o.RateLimits = snapshot
		}), nil
	}

	fields, _ := generic.(map[string]any)

	if rawErr, ok := fields["error"]; ok {
		if apiErr := decodeAPIError(rawErr); apiErr != nil {
			return p.outcome(desc.Probe, requestedAt, baseURL.String(), func(o *core.Outcome) {
				o.Class = core.ClassificationAPIError
				o.StatusCode = resp.StatusCode
				o.APIError = apiErr
				o.RateLimits = snapshot
			}), nil
		}
	}

	if records, ok := decodeRecords(body); ok {
		return p.outcome(desc.Probe, requestedAt, baseURL.String(), func(o *core.Outcome) {
			o.Class = core.ClassificationSuccess
			o.StatusCode = resp.StatusCode
			o.Records = records
			o.RateLimits = snapshot
		}), nil
	}

	return p.outcome(desc.Probe, requestedAt, baseURL.String(), func(o *core.Outcome) {
		o.Class = core.ClassificationAPIError
		o.StatusCode = resp.StatusCode
		o.APIError = &core.APIError{Code: core.CodeUnexpectedFormat, Message: "unexpected API response format"}
		o.RateLimits = snapshot
	}), nil
}

func (p *Prober) baseURL() *url.URL {
	if p != nil && p.BaseURL != "" {
		if parsed, err := url.Parse(strings.TrimRight(p.BaseURL, "/") + "/"); err == nil {
			return parsed
		}
	}
	parsed, _ := url.Parse("http://api.aviationstack.com/v1/")
	return parsed
}

func (p *Prober) outcome(probe core.ProbeType, requestedAt time.Time, server string, fill func(*core.Outcome)) *core.Outcome {
	o := &core.Outcome{
		Probe: probe,
		Provenance: core.Provenance{
			ProbeID:     uuid.New().String(),
			RequestedAt: requestedAt,
			ResolvedAt:  p.now(),
			Server:      server,
			ToolVersion: p.ToolVersion,
		},
	}
	fill(o)
	return o
}

func (p *Prober) now() time.Time {
	if p != nil && p.Clock != nil {
		return p.Clock()
	}
	return time.Now().UTC()
}

func transportKind(err error) core.TransportKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.TransportKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return core.TransportKindTimeout
	}
	return core.TransportKindConnection
}

// decodeAPIError extracts the provider error object. The code field has
// been observed as both a bare number and a string, so it is stringified
// rather than typed.
func decodeAPIError(raw any) *core.APIError {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	apiErr := &core.APIError{}
	switch code := obj["code"].(type) {
	case string:
		apiErr.Code = code
	case float64:
		apiErr.Code = fmt.Sprintf("%.0f", code)
	}
	if message, ok := obj["message"].(string); ok {
		apiErr.Message = message
	}
	if info, ok := obj["info"].(string); ok {
		apiErr.Info = info
	}
	return apiErr
}

// decodeRecords pulls the data array out of a success envelope. A missing
// key, a null, or a non-array value all report false.
func decodeRecords(body []byte) ([]json.RawMessage, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, false
	}
	rawData, ok := probe["data"]
	if !ok {
		return nil, false
	}
	var parsed dataEnvelope
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, false
	}
	if parsed.Data == nil && string(rawData) != "[]" {
		return nil, false
	}
	if parsed.Data == nil {
		parsed.Data = []json.RawMessage{}
	}
	return parsed.Data, true
}
