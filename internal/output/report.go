package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/skyops/flightprobe/internal/core"
)

// notAvailable is the placeholder rendered for missing API error sub-fields.
const notAvailable = "not available"

var (
	styleHeader  = text.Colors{text.FgBlue, text.Bold}
	styleBanner  = text.Colors{text.FgMagenta, text.Bold}
	stylePass    = text.Colors{text.FgGreen}
	styleFail    = text.Colors{text.FgRed}
	styleWarn    = text.Colors{text.FgYellow}
	styleNote    = text.Colors{text.FgCyan}
	styleAlert   = text.Colors{text.FgRed, text.Bold}
	styleConfirm = text.Colors{text.FgGreen, text.Bold}
	styleDetail  = text.Colors{text.FgYellow, text.Bold}
)

// ConsoleFormatter renders the run as a colored console report.
type ConsoleFormatter struct{}

// FormatRun renders the full diagnostic run.
func (f *ConsoleFormatter) FormatRun(result *core.RunResult) (string, error) {
	if result == nil {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(styleBanner.Sprint("FlightProbe — AviationStack API Diagnostics"))
	b.WriteString("\n")
	b.WriteString(styleBanner.Sprintf("Run started at: %s", result.StartedAt.Format("2006-01-02 15:04:05")))
	b.WriteString("\n")

	b.WriteString(SectionHeader("Verifying API Key Configuration"))
	b.WriteString(ResultLine(result.CredentialOK, credentialMessage(result.CredentialOK)))

	for _, outcome := range result.Outcomes {
		b.WriteString(RenderOutcome(outcome, result.SearchTerm))
	}

	b.WriteString(RenderSummary(result))
	return b.String(), nil
}

// SectionHeader renders a report section title.
func SectionHeader(title string) string {
	return "\n" + styleHeader.Sprintf("=== %s ===", title) + "\n"
}

// ResultLine renders a pass/fail line with the matching icon and color.
func ResultLine(ok bool, message string) string {
	if ok {
		return stylePass.Sprint("✓ "+message) + "\n"
	}
	return styleFail.Sprint("✗ "+message) + "\n"
}

func credentialMessage(ok bool) string {
	if ok {
		return "API key is configured"
	}
	return "AVIATION_STACK_API_KEY environment variable is not set"
}

// CredentialGuidance is the setup walkthrough printed when no credential is
// configured.
func CredentialGuidance() string {
	var b strings.Builder
	b.WriteString(styleWarn.Sprint("To set up your API key:"))
	b.WriteString("\n")
	b.WriteString("1. Sign up at https://aviationstack.com/ to get an API key\n")
	b.WriteString("2. Create a .env file in the project root if it doesn't exist\n")
	b.WriteString("3. Add the following line to your .env file:\n")
	b.WriteString("   AVIATION_STACK_API_KEY=your_api_key_here\n")
	b.WriteString("4. Run this check again\n")
	return b.String()
}

// RenderOutcome renders a single probe outcome, including its rate-limit
// section.
func RenderOutcome(outcome *core.Outcome, searchTerm string) string {
	if outcome == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(SectionHeader(probeTitle(outcome.Probe)))

	switch outcome.Class {
	case core.ClassificationSuccess:
		renderSuccess(&b, outcome, searchTerm)
	case core.ClassificationAPIError:
		renderAPIError(&b, outcome)
	case core.ClassificationTransport:
		renderTransport(&b, outcome)
	default:
		b.WriteString(ResultLine(false, "probe produced no classified outcome"))
	}

	b.WriteString(RenderRateLimits(outcome.RateLimits))
	return b.String()
}

func renderSuccess(b *strings.Builder, outcome *core.Outcome, searchTerm string) {
	count := len(outcome.Records)
	if count == 0 {
		b.WriteString(ResultLine(true, successEmptyMessage(outcome.Probe, searchTerm)))
		return
	}

	b.WriteString(ResultLine(true, successMessage(outcome.Probe, count, searchTerm)))
	b.WriteString(prettyRecord(outcome.Records[0]))
	b.WriteString(styleConfirm.Sprint("API ACCESS CONFIRMED:"))
	b.WriteString(fmt.Sprintf(" Your subscription can access the %s endpoint.\n", outcome.Probe))
}

func successMessage(probe core.ProbeType, count int, searchTerm string) string {
	if probe == core.ProbeTypeAirports {
		return fmt.Sprintf("Successfully found %d airports matching '%s'", count, searchTerm)
	}
	return fmt.Sprintf("Successfully retrieved %d flights", count)
}

func successEmptyMessage(probe core.ProbeType, searchTerm string) string {
	if probe == core.ProbeTypeAirports {
		return fmt.Sprintf("API request successful, but no airports were found matching '%s'", searchTerm)
	}
	return "API request successful, but no flights were returned"
}

func renderAPIError(b *strings.Builder, outcome *core.Outcome) {
	apiErr := outcome.APIError
	if apiErr == nil {
		apiErr = &core.APIError{}
	}

	message := apiErr.Message
	if message == "" {
		message = "Unknown error"
	}
	b.WriteString(ResultLine(false, "API returned an error: "+message))

	b.WriteString(styleDetail.Sprint("API Error Details:"))
	b.WriteString("\n")
	b.WriteString("Code: " + orPlaceholder(apiErr.Code) + "\n")
	b.WriteString("Message: " + orPlaceholder(apiErr.Message) + "\n")
	b.WriteString("Info: " + orPlaceholder(apiErr.Info) + "\n")

	if apiErr.AccessRestricted() {
		b.WriteString(styleAlert.Sprint("This endpoint is not available on your current subscription plan."))
		b.WriteString("\n")
		b.WriteString(styleWarn.Sprint("Consider upgrading your AviationStack plan to access this feature."))
		b.WriteString("\n")
	}
}

func renderTransport(b *strings.Builder, outcome *core.Outcome) {
	failure := outcome.Transport
	if failure == nil {
		failure = &core.TransportFailure{Kind: core.TransportKindConnection}
	}

	switch failure.Kind {
	case core.TransportKindTimeout:
		b.WriteString(ResultLine(false, "Timeout Error: The request timed out"))
		b.WriteString(styleWarn.Sprint("The API server took too long to respond. Please try again later."))
		b.WriteString("\n")
	case core.TransportKindHTTPStatus:
		b.WriteString(ResultLine(false, "HTTP Error: "+failure.Detail))
		switch failure.StatusCode {
		case 401:
			b.WriteString(styleFail.Sprint("Authentication failed. Please check your API key."))
			b.WriteString("\n")
		case 403:
			b.WriteString(styleFail.Sprint("Access forbidden. Your subscription plan may not include this endpoint."))
			b.WriteString("\n")
		case 429:
			b.WriteString(styleFail.Sprint("Rate limit exceeded. Please try again later or upgrade your plan."))
			b.WriteString("\n")
		}
	case core.TransportKindDecode:
		b.WriteString(ResultLine(false, "JSON Parsing Error: "+failure.Detail))
		b.WriteString(styleWarn.Sprint("Failed to parse the API response as JSON."))
		b.WriteString("\n")
	default:
		b.WriteString(ResultLine(false, "Connection Error: Failed to connect to the API server"))
		b.WriteString(styleWarn.Sprint("Please check your internet connection and try again."))
		b.WriteString("\n")
	}
}

// RenderRateLimits renders the rate-limit section for one probe. A nil
// snapshot means the probe never received a response.
func RenderRateLimits(snapshot *core.RateLimitSnapshot) string {
	if snapshot == nil {
		return styleWarn.Sprint("No response headers available to check rate limits") + "\n"
	}

	var b strings.Builder
	b.WriteString(SectionHeader("API Rate Limit Information"))

	if len(snapshot.Known) > 0 {
		b.WriteString(headerTable("Metric", snapshot.Known, true))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(styleWarn.Sprint("No standard rate limit headers found. All response headers:"))
	b.WriteString("\n")
	b.WriteString(headerTable("Header", snapshot.Fallback, false))
	b.WriteString("\n")
	return b.String()
}

func headerTable(nameColumn string, values []core.HeaderValue, useLabel bool) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{nameColumn, "Value"})
	for _, hv := range values {
		name := hv.Name
		if useLabel && hv.Label != "" {
			name = hv.Label
		}
		t.AppendRow(table.Row{name, hv.Value})
	}
	return t.Render()
}

// RenderSummary renders the aggregated pass/fail section and the closing
// guidance box.
func RenderSummary(result *core.RunResult) string {
	if result == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(SectionHeader("Check Summary"))
	b.WriteString(ResultLine(result.FlightsPassed, "Real-time flights API access check"))
	b.WriteString(ResultLine(result.AirportsPass, "Airports search API access check"))
	b.WriteString("\n")

	if result.AllPassed() {
		lines := []string{
			"✓ API ACCESS VERIFIED",
			"",
			"Your AviationStack API key is working with all tested endpoints.",
			"",
			"Next steps:",
			"1. Ensure the API key is properly set in your application's .env file",
			"2. Configure your application to use the real API instead of mock data",
			"3. Monitor your API usage to stay within your subscription limits",
		}
		b.WriteString(ascii.DrawBox(strings.Join(lines, "\n"), 0))
		return b.String()
	}

	lines := []string{
		"⚠ API ACCESS ISSUES DETECTED",
		"",
		"There were problems accessing one or more AviationStack API endpoints.",
		"",
		"Troubleshooting steps:",
		"1. Verify your API key is correct",
		"2. Check if your subscription plan includes the endpoints you need",
		"3. If endpoints are not available, consider using the mock service",
		"4. For paid endpoints, consider upgrading your subscription plan",
	}
	b.WriteString(ascii.DrawBox(strings.Join(lines, "\n"), 0))
	return b.String()
}

func probeTitle(probe core.ProbeType) string {
	switch probe {
	case core.ProbeTypeAirports:
		return "Testing Airports Search API"
	default:
		return "Testing Real-time Flights API"
	}
}

func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return notAvailable
	}
	return value
}

func prettyRecord(record json.RawMessage) string {
	if len(record) == 0 {
		return ""
	}
	var parsed any
	if err := json.Unmarshal(record, &parsed); err != nil {
		return string(record) + "\n"
	}
	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return string(record) + "\n"
	}
	return string(pretty) + "\n"
}

// NoteLine renders an informational progress line.
func NoteLine(message string) string {
	return styleNote.Sprint(message) + "\n"
}

// WarnLine renders a warning line.
func WarnLine(message string) string {
	return styleWarn.Sprint(message) + "\n"
}
