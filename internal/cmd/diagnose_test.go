package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skyops/flightprobe/internal/config"
	"github.com/skyops/flightprobe/internal/core"
	"github.com/skyops/flightprobe/internal/core/prober"
)

type stubProber struct {
	calls    int
	descs    []prober.Descriptor
	outcomes map[core.ProbeType]*core.Outcome
}

func (s *stubProber) Probe(ctx context.Context, desc prober.Descriptor) (*core.Outcome, error) {
	s.calls++
	s.descs = append(s.descs, desc)
	return s.outcomes[desc.Probe], nil
}

func testConfig(key string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			Key:     key,
			BaseURL: "http://api.aviationstack.com/v1",
			Timeout: 10 * time.Second,
		},
		Probes: config.ProbesConfig{
			FlightsLimit:  2,
			AirportSearch: "London",
			AirportsLimit: 5,
		},
	}
}

func discard(string) {}

func TestExecuteRunMissingCredentialIssuesNoRequests(t *testing.T) {
	stub := &stubProber{}
	result, err := executeRun(context.Background(), stub, testConfig(""), "dev", discard)
	require.NoError(t, err)
	require.False(t, result.CredentialOK)
	require.Zero(t, stub.calls)
	require.Empty(t, result.Outcomes)
	require.False(t, result.AllPassed())
}

func TestExecuteRunAllPassed(t *testing.T) {
	stub := &stubProber{outcomes: map[core.ProbeType]*core.Outcome{
		core.ProbeTypeFlights:  {Probe: core.ProbeTypeFlights, Class: core.ClassificationSuccess},
		core.ProbeTypeAirports: {Probe: core.ProbeTypeAirports, Class: core.ClassificationSuccess},
	}}

	result, err := executeRun(context.Background(), stub, testConfig("key"), "dev", discard)
	require.NoError(t, err)
	require.True(t, result.CredentialOK)
	require.True(t, result.FlightsPassed)
	require.True(t, result.AirportsPass)
	require.True(t, result.AllPassed())
	require.Equal(t, 2, stub.calls)
	require.Equal(t, core.ProbeTypeFlights, stub.descs[0].Probe)
	require.Equal(t, core.ProbeTypeAirports, stub.descs[1].Probe)
	require.Equal(t, "London", result.SearchTerm)
}

func TestExecuteRunPartialFailureStillCompletes(t *testing.T) {
	stub := &stubProber{outcomes: map[core.ProbeType]*core.Outcome{
		core.ProbeTypeFlights: {Probe: core.ProbeTypeFlights, Class: core.ClassificationSuccess},
		core.ProbeTypeAirports: {
			Probe:    core.ProbeTypeAirports,
			Class:    core.ClassificationAPIError,
			APIError: &core.APIError{Code: core.CodeFunctionAccessRestricted},
		},
	}}

	result, err := executeRun(context.Background(), stub, testConfig("key"), "dev", discard)
	require.NoError(t, err)
	require.Equal(t, 2, stub.calls)
	require.True(t, result.FlightsPassed)
	require.False(t, result.AirportsPass)
	require.False(t, result.AllPassed())
	require.Len(t, result.Outcomes, 2)
}

func TestExecuteRunStopsAfterInterrupt(t *testing.T) {
	stub := &stubProber{outcomes: map[core.ProbeType]*core.Outcome{
		core.ProbeTypeFlights:  {Probe: core.ProbeTypeFlights, Class: core.ClassificationTransport, Transport: &core.TransportFailure{Kind: core.TransportKindConnection}},
		core.ProbeTypeAirports: {Probe: core.ProbeTypeAirports, Class: core.ClassificationSuccess},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := executeRun(ctx, stub, testConfig("key"), "dev", discard)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, stub.calls)
	require.Len(t, result.Outcomes, 1)
}

func TestExecuteRunReportsProgress(t *testing.T) {
	stub := &stubProber{outcomes: map[core.ProbeType]*core.Outcome{
		core.ProbeTypeFlights:  {Probe: core.ProbeTypeFlights, Class: core.ClassificationSuccess},
		core.ProbeTypeAirports: {Probe: core.ProbeTypeAirports, Class: core.ClassificationSuccess},
	}}

	var notes []string
	result, err := executeRun(context.Background(), stub, testConfig("key"), "dev", func(msg string) {
		notes = append(notes, msg)
	})
	require.NoError(t, err)
	require.True(t, result.AllPassed())
	require.Len(t, notes, 2)
	require.Contains(t, notes[0], "real-time flights")
	require.Contains(t, notes[1], "'London'")
}
