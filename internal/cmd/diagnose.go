package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skyops/flightprobe/internal/config"
	"github.com/skyops/flightprobe/internal/core"
	"github.com/skyops/flightprobe/internal/core/prober"
	"github.com/skyops/flightprobe/internal/observability"
	"github.com/skyops/flightprobe/internal/output"
)

var (
	diagnoseOutputRaw string
	diagnoseTimeout   time.Duration
	diagnoseSearch    string
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Verify API connectivity and plan access",
	Long:  "Probe the AviationStack flights and airports endpoints and report pass/fail results with troubleshooting guidance.",
	RunE:  runDiagnose,
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
	addDiagnoseFlags(diagnoseCmd)
}

func addDiagnoseFlags(c *cobra.Command) {
	c.Flags().StringVar(&diagnoseOutputRaw, "output", string(output.FormatConsole), "Output format: console|json")
	c.Flags().DurationVar(&diagnoseTimeout, "timeout", 0, "HTTP timeout per probe (overrides api.timeout)")
	c.Flags().StringVar(&diagnoseSearch, "search", "", "Airport search term (overrides probes.airport_search)")
}

// endpointProber abstracts the prober so the run sequence is testable
// without network access.
type endpointProber interface {
	Probe(ctx context.Context, desc prober.Descriptor) (*core.Outcome, error)
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	format, err := output.ParseFormat(diagnoseOutputRaw)
	if err != nil {
		return err
	}

	if diagnoseTimeout > 0 {
		cfg.API.Timeout = diagnoseTimeout
	}
	if diagnoseSearch != "" {
		cfg.Probes.AirportSearch = diagnoseSearch
	}

	// The credential check happens before the prober is constructed; a
	// missing key must never reach the network.
	if !cfg.HasCredential() {
		fmt.Fprint(os.Stdout, output.SectionHeader("Verifying API Key Configuration"))
		fmt.Fprint(os.Stdout, output.ResultLine(false, "AVIATION_STACK_API_KEY environment variable is not set"))
		fmt.Fprint(os.Stdout, output.CredentialGuidance())
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "API credential is not configured", nil)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &prober.Prober{
		Client:      &http.Client{Timeout: cfg.API.Timeout},
		BaseURL:     cfg.API.BaseURL,
		APIKey:      cfg.API.Key,
		ToolVersion: versionInfo.Version,
	}

	progress := func(string) {}
	if format == output.FormatConsole {
		progress = func(msg string) {
			fmt.Fprint(os.Stdout, output.NoteLine(msg))
		}
	}

	result, runErr := executeRun(ctx, p, cfg, versionInfo.Version, progress)
	if runErr != nil {
		if ctx.Err() != nil {
			fmt.Fprint(os.Stdout, "\n"+output.WarnLine("Check interrupted by user."))
			ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Diagnostics interrupted", runErr)
		}
		return runErr
	}

	rendered, err := output.NewFormatter(format).FormatRun(result)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, rendered)

	observability.CLILogger.Debug("Diagnostics complete",
		zap.Bool("flights_passed", result.FlightsPassed),
		zap.Bool("airports_passed", result.AirportsPass),
		zap.Bool("all_passed", result.AllPassed()))

	// Partial probe failures are reported in the summary but do not change
	// the exit status.
	return nil
}

// executeRun walks the fixed diagnostic sequence: verify credential, probe
// flights, probe airports. Probe failures fold into booleans; only an
// interrupt or a request-construction failure stops the sequence early.
func executeRun(ctx context.Context, p endpointProber, cfg *config.Config, toolVersion string, progress func(string)) (*core.RunResult, error) {
	result := &core.RunResult{
		StartedAt:   time.Now().UTC(),
		ToolVersion: toolVersion,
		SearchTerm:  cfg.Probes.AirportSearch,
	}

	if !cfg.HasCredential() {
		return result, nil
	}
	result.CredentialOK = true

	progress("Fetching real-time flights data...")
	flights, err := p.Probe(ctx, prober.FlightsDescriptor(cfg.Probes.FlightsLimit))
	if err != nil {
		return result, err
	}
	result.Outcomes = append(result.Outcomes, flights)
	result.FlightsPassed = flights.OK()
	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	progress(fmt.Sprintf("Searching for airports matching: '%s'", cfg.Probes.AirportSearch))
	airports, err := p.Probe(ctx, prober.AirportsDescriptor(cfg.Probes.AirportSearch, cfg.Probes.AirportsLimit))
	if err != nil {
		return result, err
	}
	result.Outcomes = append(result.Outcomes, airports)
	result.AirportsPass = airports.OK()
	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	return result, nil
}
