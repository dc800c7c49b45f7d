package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/require"

	"github.com/skyops/flightprobe/internal/core"
)

func TestMain(m *testing.M) {
	// Plain output keeps the assertions independent of the terminal.
	text.DisableColors()
	m.Run()
}

func successOutcome(records ...string) *core.Outcome {
	raw := make([]json.RawMessage, 0, len(records))
	for _, r := range records {
		raw = append(raw, json.RawMessage(r))
	}
	return &core.Outcome{
		Probe:   core.ProbeTypeFlights,
		Class:   core.ClassificationSuccess,
		Records: raw,
		RateLimits: &core.RateLimitSnapshot{
			Known: []core.HeaderValue{{Name: "x-ratelimit-remaining", Label: "Rate Limit Remaining", Value: "99"}},
		},
	}
}

func TestRenderOutcomeSuccess(t *testing.T) {
	rendered := RenderOutcome(successOutcome(`{"flight":"AB123"}`, `{"flight":"CD456"}`), "London")
	require.Contains(t, rendered, "Testing Real-time Flights API")
	require.Contains(t, rendered, "✓ Successfully retrieved 2 flights")
	require.Contains(t, rendered, `"flight": "AB123"`)
	require.NotContains(t, rendered, "CD456")
	require.Contains(t, rendered, "API ACCESS CONFIRMED:")
	require.Contains(t, rendered, "Rate Limit Remaining")
	require.Contains(t, rendered, "99")
}

func TestRenderOutcomeSuccessEmpty(t *testing.T) {
	outcome := successOutcome()
	outcome.Records = []json.RawMessage{}
	rendered := RenderOutcome(outcome, "London")
	require.Contains(t, rendered, "✓ API request successful, but no flights were returned")
	require.NotContains(t, rendered, "✗")
}

func TestRenderOutcomeAirportsSearchTerm(t *testing.T) {
	outcome := successOutcome(`{"airport_name":"Heathrow"}`)
	outcome.Probe = core.ProbeTypeAirports
	rendered := RenderOutcome(outcome, "London")
	require.Contains(t, rendered, "Testing Airports Search API")
	require.Contains(t, rendered, "✓ Successfully found 1 airports matching 'London'")
}

func TestRenderOutcomeAPIErrorVerbatimFields(t *testing.T) {
	outcome := &core.Outcome{
		Probe: core.ProbeTypeAirports,
		Class: core.ClassificationAPIError,
		APIError: &core.APIError{
			Code:    "usage_limit_reached",
			Message: "monthly quota exhausted",
		},
		RateLimits: &core.RateLimitSnapshot{
			Fallback: []core.HeaderValue{{Name: "Content-Type", Value: "application/json"}},
		},
	}
	rendered := RenderOutcome(outcome, "London")
	require.Contains(t, rendered, "✗ API returned an error: monthly quota exhausted")
	require.Contains(t, rendered, "Code: usage_limit_reached")
	require.Contains(t, rendered, "Message: monthly quota exhausted")
	require.Contains(t, rendered, "Info: not available")
	require.NotContains(t, rendered, "upgrading your AviationStack plan")
	require.Contains(t, rendered, "No standard rate limit headers found")
	require.Contains(t, rendered, "Content-Type")
}

func TestRenderOutcomeAccessRestrictedHint(t *testing.T) {
	outcome := &core.Outcome{
		Probe: core.ProbeTypeAirports,
		Class: core.ClassificationAPIError,
		APIError: &core.APIError{
			Code:    core.CodeFunctionAccessRestricted,
			Message: "restricted",
		},
	}
	rendered := RenderOutcome(outcome, "London")
	require.Contains(t, rendered, "not available on your current subscription plan")
	require.Contains(t, rendered, "Consider upgrading your AviationStack plan")
}

func TestRenderOutcomeConnectionError(t *testing.T) {
	outcome := &core.Outcome{
		Probe: core.ProbeTypeFlights,
		Class: core.ClassificationTransport,
		Transport: &core.TransportFailure{
			Kind:   core.TransportKindConnection,
			Detail: "dial tcp: connection refused",
		},
	}
	rendered := RenderOutcome(outcome, "London")
	require.Contains(t, rendered, "✗ Connection Error: Failed to connect to the API server")
	require.Contains(t, rendered, "check your internet connection")
	require.Contains(t, rendered, "No response headers available to check rate limits")
}

func TestRenderOutcomeHTTPStatusHints(t *testing.T) {
	cases := []struct {
		status int
		hint   string
	}{
		{401, "Authentication failed"},
		{403, "Access forbidden"},
		{429, "Rate limit exceeded"},
	}
	for _, tc := range cases {
		outcome := &core.Outcome{
			Probe: core.ProbeTypeFlights,
			Class: core.ClassificationTransport,
			Transport: &core.TransportFailure{
				Kind:       core.TransportKindHTTPStatus,
				Detail:     "status",
				StatusCode: tc.status,
			},
		}
		rendered := RenderOutcome(outcome, "London")
		require.Contains(t, rendered, "✗ HTTP Error:")
		require.Contains(t, rendered, tc.hint)
	}
}

func TestRenderSummaryAllPassed(t *testing.T) {
	result := &core.RunResult{
		CredentialOK:  true,
		FlightsPassed: true,
		AirportsPass:  true,
	}
	rendered := RenderSummary(result)
	require.Contains(t, rendered, "✓ Real-time flights API access check")
	require.Contains(t, rendered, "✓ Airports search API access check")
	require.Contains(t, rendered, "API ACCESS VERIFIED")
	require.NotContains(t, rendered, "ISSUES DETECTED")
}

func TestRenderSummaryPartialFailure(t *testing.T) {
	result := &core.RunResult{
		CredentialOK:  true,
		FlightsPassed: true,
		AirportsPass:  false,
	}
	rendered := RenderSummary(result)
	require.Contains(t, rendered, "✗ Airports search API access check")
	require.Contains(t, rendered, "API ACCESS ISSUES DETECTED")
	require.Contains(t, rendered, "Troubleshooting steps:")
}

func TestConsoleFormatterFullRun(t *testing.T) {
	result := &core.RunResult{
		StartedAt:     time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC),
		CredentialOK:  true,
		SearchTerm:    "London",
		FlightsPassed: true,
		Outcomes: []*core.Outcome{
			successOutcome(`{"flight":"AB123"}`),
			{
				Probe:    core.ProbeTypeAirports,
				Class:    core.ClassificationAPIError,
				APIError: &core.APIError{Code: core.CodeFunctionAccessRestricted, Message: "restricted"},
			},
		},
	}

	rendered, err := (&ConsoleFormatter{}).FormatRun(result)
	require.NoError(t, err)
	require.Contains(t, rendered, "FlightProbe — AviationStack API Diagnostics")
	require.Contains(t, rendered, "Run started at: 2026-02-01 09:30:00")
	require.Contains(t, rendered, "✓ API key is configured")
	require.Contains(t, rendered, "Successfully retrieved 1 flights")
	require.Contains(t, rendered, "Consider upgrading your AviationStack plan")
	require.Contains(t, rendered, "API ACCESS ISSUES DETECTED")

	// Sections appear in run order.
	flightsIdx := strings.Index(rendered, "Testing Real-time Flights API")
	airportsIdx := strings.Index(rendered, "Testing Airports Search API")
	summaryIdx := strings.Index(rendered, "Check Summary")
	require.Greater(t, airportsIdx, flightsIdx)
	require.Greater(t, summaryIdx, airportsIdx)
}

func TestJSONFormatter(t *testing.T) {
	result := &core.RunResult{
		StartedAt:     time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC),
		CredentialOK:  true,
		FlightsPassed: true,
		AirportsPass:  true,
		Outcomes:      []*core.Outcome{successOutcome(`{"flight":"AB123"}`)},
	}

	rendered, err := (&JSONFormatter{Indent: true}).FormatRun(result)
	require.NoError(t, err)

	var decoded core.RunResult
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	require.True(t, decoded.CredentialOK)
	require.Len(t, decoded.Outcomes, 1)
	require.Equal(t, core.ClassificationSuccess, decoded.Outcomes[0].Class)
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatConsole, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}
