package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"axioma/internal/discernment"
	"axioma/internal/signals"
)

type evaluateOptions struct {
	input           string
	verifiable      bool
	noContradiction bool
	valuesAligned   bool
	longTerm        bool
	evidence        string
	situationalFit  string
	resources       string
	riskTime        string
	riskMoney       string
	riskHealth      string
	riskPeace       string
	flags           []string
	keywords        []string
	notes           string
	foundationNotes string
	contextNotes    string
	purpose         string
	detect          bool
	narrate         bool
	format          string
}

func (c *cli) evaluateCmd() *cobra.Command {
	var opts evaluateOptions
	cmd := &cobra.Command{
		Use:   "evaluate [affirmation...]",
		Short: "Evaluate one affirmation",
		Long: `Evaluate one affirmation from flags, a YAML input file, or both.

Numeric signals accept a number in [0,1] or a level word (bajo, medio, alto).
Flags override values read from --input.`,
		Example: `  axioma evaluate "Dejar mi trabajo para emprender" --risk-money alto --values-aligned
  axioma evaluate --input decision.yaml --detect --format text`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := opts.rawInput(cmd, args, c.in)
			if err != nil {
				return err
			}
			return c.runEvaluate(cmd, raw, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "YAML RawInput file, - for stdin")
	f.BoolVar(&opts.verifiable, "verifiable", false, "the affirmation can be verified")
	f.BoolVar(&opts.noContradiction, "no-contradiction", false, "no known contradiction")
	f.BoolVar(&opts.valuesAligned, "values-aligned", false, "aligned with declared values")
	f.BoolVar(&opts.longTerm, "long-term", false, "coherent with long-term purpose")
	f.StringVar(&opts.evidence, "evidence", "", "evidence signal")
	f.StringVar(&opts.situationalFit, "situational-fit", "", "situational fit")
	f.StringVar(&opts.resources, "resources", "", "resource availability")
	f.StringVar(&opts.riskTime, "risk-time", "", "time risk")
	f.StringVar(&opts.riskMoney, "risk-money", "", "money risk")
	f.StringVar(&opts.riskHealth, "risk-health", "", "health and relationships risk")
	f.StringVar(&opts.riskPeace, "risk-peace", "", "peace of mind risk")
	f.StringSliceVar(&opts.flags, "flag", nil, "context flag, repeatable")
	f.StringSliceVar(&opts.keywords, "keyword", nil, "keyword, repeatable")
	f.StringVar(&opts.notes, "notes", "", "agent notes carried into the result")
	f.StringVar(&opts.foundationNotes, "foundation-notes", "", "what you know about the facts, read by --detect")
	f.StringVar(&opts.contextNotes, "context-notes", "", "your current situation, read by --detect")
	f.StringVar(&opts.purpose, "purpose", "", "the purpose behind the decision, read by --detect")
	f.BoolVar(&opts.detect, "detect", false, "detect flags, keywords, risk patterns and soft contradictions")
	f.BoolVar(&opts.narrate, "narrate", false, "ask the configured narrator for a narrative")
	f.StringVarP(&opts.format, "format", "o", formatJSON, "output format: json or text")
	return cmd
}

func (c *cli) runEvaluate(cmd *cobra.Command, raw discernment.RawInput, opts evaluateOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	cfg, err := c.engineConfig()
	if err != nil {
		return err
	}
	svc, err := c.service(cfg)
	if err != nil {
		return err
	}

	var detected *signals.Result
	if opts.detect {
		d := signals.DetectEvidence(signals.Evidence{
			Statement:  raw.Affirmation,
			Foundation: opts.foundationNotes,
			Context:    opts.contextNotes,
			Purpose:    opts.purpose,
		})
		d.Apply(&raw)
		detected = &d
	}

	result, err := svc.Evaluate(cmd.Context(), discernment.EvaluateRequest{
		Input:      raw,
		AgentNotes: opts.notes,
		Narrate:    opts.narrate,
	})
	if err != nil {
		return err
	}
	return render(c.out, opts.format, result, detected)
}

// rawInput merges --input with the positional affirmation and the signal
// flags. Only flags the caller set override the file.
func (o evaluateOptions) rawInput(cmd *cobra.Command, args []string, stdin io.Reader) (discernment.RawInput, error) {
	var raw discernment.RawInput
	if o.input != "" {
		var err error
		if raw, err = readRawInput(o.input, stdin); err != nil {
			return raw, err
		}
	}
	if len(args) > 0 {
		raw.Affirmation = strings.Join(args, " ")
	}
	if strings.TrimSpace(raw.Affirmation) == "" {
		return raw, fmt.Errorf("an affirmation is required, as arguments or in --input")
	}

	changed := cmd.Flags().Changed
	boolFlags := []struct {
		name string
		v    bool
		dst  **bool
	}{
		{"verifiable", o.verifiable, &raw.Verifiable},
		{"no-contradiction", o.noContradiction, &raw.NoContradiction},
		{"values-aligned", o.valuesAligned, &raw.ValuesAligned},
		{"long-term", o.longTerm, &raw.LongTermCoherent},
	}
	for _, b := range boolFlags {
		if changed(b.name) {
			v := b.v
			*b.dst = &v
		}
	}

	numFlags := []struct {
		name string
		v    string
		dst  **float64
	}{
		{"evidence", o.evidence, &raw.EvidenceSignal},
		{"situational-fit", o.situationalFit, &raw.SituationalFit},
		{"resources", o.resources, &raw.ResourceAvailability},
		{"risk-time", o.riskTime, &raw.RiskTime},
		{"risk-money", o.riskMoney, &raw.RiskMoney},
		{"risk-health", o.riskHealth, &raw.RiskHealthRelationships},
		{"risk-peace", o.riskPeace, &raw.RiskPeace},
	}
	for _, n := range numFlags {
		if !changed(n.name) {
			continue
		}
		v, err := parseSignal(n.v)
		if err != nil {
			return raw, fmt.Errorf("--%s: %w", n.name, err)
		}
		*n.dst = &v
	}

	for _, name := range o.flags {
		flag, ok := discernment.ParseContextFlag(strings.TrimSpace(name))
		if !ok {
			return raw, fmt.Errorf("--flag: unknown context flag %q", name)
		}
		if !raw.HasFlag(flag) {
			raw.Flags = append(raw.Flags, flag)
		}
	}
	raw.Keywords = append(raw.Keywords, o.keywords...)
	return raw, nil
}

// parseSignal reads a number or a level word. Range checks happen in the
// engine so the CLI reports the same errors as the server.
func parseSignal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	v, err := discernment.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("%q is neither a number nor a level word (bajo, medio, alto)", s)
	}
	return v, nil
}

func readRawInput(path string, stdin io.Reader) (discernment.RawInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return discernment.RawInput{}, fmt.Errorf("read input: %w", err)
	}

	var raw discernment.RawInput
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && err != io.EOF {
		return raw, fmt.Errorf("decode input %s: %w", path, err)
	}
	return raw, nil
}
