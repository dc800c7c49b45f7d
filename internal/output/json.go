package output

import (
	"encoding/json"

	"github.com/skyops/flightprobe/internal/core"
)

// JSONFormatter renders the run result as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatRun renders a run result as JSON.
func (f *JSONFormatter) FormatRun(result *core.RunResult) (string, error) {
	if result == nil {
		return "", nil
	}

	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
