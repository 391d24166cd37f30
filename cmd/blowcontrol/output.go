package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ghodss/yaml"

	"github.com/alittlebrighter/blowcontrol"
)

// outcome is the machine readable result of a simple command.
type outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// encode writes v as JSON or YAML. It reports false for text output.
func encode(w io.Writer, format string, v interface{}) (bool, error) {
	switch format {
	case outputJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		return true, err
	case outputYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return true, err
		}
		_, err = w.Write(out)
		return true, err
	}
	return false, nil
}

func (a *app) printOutcome(w io.Writer, o outcome) error {
	if ok, err := encode(w, a.output, o); ok {
		return err
	}
	if o.Success {
		_, err := fmt.Fprintf(w, "✓ %s\n", o.Message)
		return err
	}
	_, err := fmt.Fprintf(w, "✗ %s\n", o.Error)
	return err
}

// printResult writes an oscillation result and turns a failed write into
// an error so the process exits non-zero.
func (a *app) printResult(w io.Writer, res blowcontrol.Result) error {
	if ok, err := encode(w, a.output, res); ok {
		if err != nil {
			return err
		}
		if !res.Success {
			return errReported
		}
		return nil
	}

	if !res.Success {
		fmt.Fprintf(w, "✗ Failed to update oscillation: %s\n", res.Error)
		return errReported
	}

	fmt.Fprintf(w, "✓ %s\n", res.Message)
	if res.WidthAdjusted {
		fmt.Fprintf(w, "  Width %q adjusted to %s\n", res.RequestedWidth, res.AdjustedWidth)
	}
	if res.Adjusted {
		fmt.Fprintf(w, "  Heading adjusted from %d° to %d° to stay within the 5°-355° range\n", res.OriginalHeading, res.Heading)
	}
	if res.CurrentWidth != 0 && !res.WidthPreserved {
		fmt.Fprintf(w, "  Current width unknown, used %d°\n", res.CurrentWidth)
	}
	return nil
}
