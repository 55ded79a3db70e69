package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"axioma/internal/discernment"
	"axioma/internal/discernment/handler"
	"axioma/internal/signals"
)

const (
	formatJSON = "json"
	formatText = "text"
)

func checkFormat(format string) error {
	if format != formatJSON && format != formatText {
		return fmt.Errorf("unknown format %q (want json or text)", format)
	}
	return nil
}

// render writes the result in the same JSON shape the HTTP API returns, or
// as a short human summary.
func render(w io.Writer, format string, result *discernment.EvaluateResult, detected *signals.Result) error {
	resp := handler.FromResult(result, detected)
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	obj := result.Object
	scores := obj.Scores()
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", obj.DecisionObject())
	fmt.Fprintf(&b, "  decision:  %s (%s)\n", obj.State(), obj.Reason())
	fmt.Fprintf(&b, "  scores:    F=%.3f C=%.3f P=%.3f riesgo=%.3f\n",
		scores.Fundamento, scores.Contexto, scores.Principio, obj.Risk().Global)
	theme := obj.Theme()
	if len(theme.Secondary) > 0 {
		secondary := make([]string, len(theme.Secondary))
		for i, t := range theme.Secondary {
			secondary[i] = string(t)
		}
		fmt.Fprintf(&b, "  theme:     %s (also %s)\n", theme.Dominant, strings.Join(secondary, ", "))
	} else {
		fmt.Fprintf(&b, "  theme:     %s\n", theme.Dominant)
	}
	if notes := obj.AgentNotes(); notes != "" {
		fmt.Fprintf(&b, "  notes:     %s\n", strings.ReplaceAll(notes, "\n", "; "))
	}
	if detected != nil {
		for _, hit := range detected.RiskPatterns {
			fmt.Fprintf(&b, "  pattern:   %s [%s] %s\n", hit.ID, hit.Severity, hit.Title)
		}
		for _, c := range detected.SoftContradictions {
			fmt.Fprintf(&b, "  tension:   %s [%s] %s -> %s\n",
				c.Type, c.Severity, strings.Join(c.AffectedAxes, ","), c.SuggestedAction)
		}
	}
	switch {
	case result.Narrative != "":
		fmt.Fprintf(&b, "\n%s\n", result.Narrative)
	case result.NarrativeError != "":
		fmt.Fprintf(&b, "  narrative unavailable: %s\n", result.NarrativeError)
	}
	fmt.Fprintf(&b, "  fingerprint: %s\n", resp.Fingerprint)
	_, err := io.WriteString(w, b.String())
	return err
}
