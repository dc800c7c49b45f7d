package core

import (
	"encoding/json"
	"time"
)

// ProbeType identifies which endpoint a probe targets.
type ProbeType string

const (
	ProbeTypeFlights  ProbeType = "flights"
	ProbeTypeAirports ProbeType = "airports"
)

// Classification is the outcome variant for a single probe.
type Classification int

const (
	ClassificationUnknown   Classification = 0
	ClassificationSuccess   Classification = 1
	ClassificationAPIError  Classification = 2
	ClassificationTransport Classification = 3
)

// TransportKind distinguishes transport-level failures.
type TransportKind string

const (
	TransportKindConnection TransportKind = "connection"
	TransportKindTimeout    TransportKind = "timeout"
	TransportKindHTTPStatus TransportKind = "http-status"
	TransportKindDecode     TransportKind = "decode"
)

// CodeFunctionAccessRestricted is the provider error code returned when the
// current subscription plan does not include the requested endpoint.
const CodeFunctionAccessRestricted = "function_access_restricted"

// CodeUnexpectedFormat is the synthetic error code assigned when a response
// body parses as JSON but matches neither the data nor the error envelope.
const CodeUnexpectedFormat = "unexpected_response_format"

// APIError is a well-formed JSON response the provider marks as a logical
// error via an embedded error object. Missing sub-fields stay empty; the
// renderer substitutes an explicit placeholder.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Info    string `json:"info,omitempty"`
}

// AccessRestricted reports whether the error denotes an endpoint excluded
// from the current subscription plan.
func (e *APIError) AccessRestricted() bool {
	return e != nil && e.Code == CodeFunctionAccessRestricted
}

// TransportFailure captures a failure below the API layer: the request never
// completed, the status line was an unexplained 4xx/5xx, or the body did not
// decode as JSON.
type TransportFailure struct {
	Kind       TransportKind `json:"kind"`
	Detail     string        `json:"detail,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
}

// Provenance captures metadata about how a probe was resolved.
type Provenance struct {
	ProbeID     string    `json:"probe_id"`
	RequestedAt time.Time `json:"requested_at"`
	ResolvedAt  time.Time `json:"resolved_at"`
	Server      string    `json:"server,omitempty"`
	ToolVersion string    `json:"tool_version,omitempty"`
}

// HeaderValue is a single response header captured for the report.
type HeaderValue struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Value string `json:"value"`
}

// RateLimitSnapshot holds the rate-limit headers found on a response. When
// none of the known header names are present, the full header set is kept
// instead so unknown provider conventions stay diagnosable. A nil snapshot
// means the probe never received a response.
type RateLimitSnapshot struct {
	Known    []HeaderValue `json:"known,omitempty"`
	Fallback []HeaderValue `json:"fallback,omitempty"`
}

// Outcome is the exhaustive result of one probe. Exactly one of the variant
// pointers matching Class is populated.
type Outcome struct {
	Probe      ProbeType          `json:"probe"`
	Class      Classification     `json:"class"`
	StatusCode int                `json:"status_code,omitempty"`
	Records    []json.RawMessage  `json:"records,omitempty"`
	APIError   *APIError          `json:"api_error,omitempty"`
	Transport  *TransportFailure  `json:"transport,omitempty"`
	RateLimits *RateLimitSnapshot `json:"rate_limits,omitempty"`
	Provenance Provenance         `json:"provenance"`
}

// OK reports whether the probe counts as passed for the run summary.
func (o *Outcome) OK() bool {
	return o != nil && o.Class == ClassificationSuccess
}

// RunResult aggregates the full diagnostic sequence for rendering.
type RunResult struct {
	StartedAt     time.Time  `json:"started_at"`
	CredentialOK  bool       `json:"credential_ok"`
	Outcomes      []*Outcome `json:"outcomes,omitempty"`
	ToolVersion   string     `json:"tool_version,omitempty"`
	SearchTerm    string     `json:"search_term,omitempty"`
	FlightsPassed bool       `json:"flights_passed"`
	AirportsPass  bool       `json:"airports_passed"`
}

// AllPassed reports whether every stage of the run succeeded.
func (r *RunResult) AllPassed() bool {
	return r != nil && r.CredentialOK && r.FlightsPassed && r.AirportsPass
}
