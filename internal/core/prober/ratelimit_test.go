package prober

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotRateLimitsKnownSubset(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-RateLimit-Limit", "10000")
	headers.Set("X-RateLimit-Remaining", "42")
	headers.Set("Content-Type", "application/json")

	snapshot := SnapshotRateLimits(headers)
	require.NotNil(t, snapshot)
	require.Len(t, snapshot.Known, 2)
	require.Empty(t, snapshot.Fallback)
	require.Equal(t, "x-ratelimit-limit", snapshot.Known[0].Name)
	require.Equal(t, "Rate Limit Total", snapshot.Known[0].Label)
	require.Equal(t, "10000", snapshot.Known[0].Value)
	require.Equal(t, "42", snapshot.Known[1].Value)
}

func TestSnapshotRateLimitsUnprefixedVariant(t *testing.T) {
	headers := http.Header{}
	headers.Set("RateLimit-Reset", "1756400000")

	snapshot := SnapshotRateLimits(headers)
	require.NotNil(t, snapshot)
	require.Len(t, snapshot.Known, 1)
	require.Equal(t, "ratelimit-reset", snapshot.Known[0].Name)
	require.Equal(t, "Rate Limit Reset Time", snapshot.Known[0].Label)
}

func TestSnapshotRateLimitsFallbackToAllHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Server", "nginx")

	snapshot := SnapshotRateLimits(headers)
	require.NotNil(t, snapshot)
	require.Empty(t, snapshot.Known)
	require.Len(t, snapshot.Fallback, 2)
	require.Equal(t, "Content-Type", snapshot.Fallback[0].Name)
	require.Equal(t, "Server", snapshot.Fallback[1].Name)
}

func TestSnapshotRateLimitsNilHeaders(t *testing.T) {
	require.Nil(t, SnapshotRateLimits(nil))
}
