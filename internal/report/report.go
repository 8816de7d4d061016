// Package report renders scan results in plaintext, JSON, or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/corporealshift/driftwatcher/internal/drift"
)

// Format selects a rendering.
type Format string

const (
	Plaintext Format = "plaintext"
	JSON      Format = "json"
	YAML      Format = "yaml"
)

// ParseFormat maps a CLI flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case Plaintext, JSON, YAML:
		return Format(s), nil
	case "":
		return Plaintext, nil
	default:
		return "", fmt.Errorf("report: unknown format %q (want plaintext, json, or yaml)", s)
	}
}

// Map flattens a result into document path to path spec to status token.
// Broken documents and documents without entries are left out, matching
// the rendered formats.
func Map(res *drift.Result) map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, d := range res.Docs {
		if d.Err != nil || len(d.Records) == 0 {
			continue
		}
		inner := make(map[string]string, len(d.Records))
		for _, rec := range d.Records {
			inner[rec.Spec] = rec.Status.String()
		}
		out[d.Doc] = inner
	}
	return out
}

// Render writes the result to w in the given format.
func Render(w io.Writer, res *drift.Result, format Format) error {
	switch format {
	case Plaintext:
		return renderPlaintext(w, res)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Map(res))
	case YAML:
		data, err := yaml.Marshal(Map(res))
		if err != nil {
			return fmt.Errorf("report: marshal YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}

func renderPlaintext(w io.Writer, res *drift.Result) error {
	rendered := false
	for _, d := range res.Docs {
		if d.Err != nil || len(d.Records) == 0 {
			continue
		}
		rendered = true
		if _, err := fmt.Fprintln(w, d.Doc); err != nil {
			return err
		}
		for _, rec := range d.Records {
			if _, err := fmt.Fprintf(w, "  %-8s %s\n", rec.Status, rec.Spec); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	if !rendered {
		_, err := fmt.Fprintln(w, "No driftwatcher entries found.")
		return err
	}
	return nil
}
