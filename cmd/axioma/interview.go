package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"axioma/internal/discernment"
	"axioma/internal/interview"
	"axioma/internal/signals"
)

type interviewOptions struct {
	seed    string
	detect  bool
	narrate bool
	format  string
}

func (c *cli) interviewCmd() *cobra.Command {
	var opts interviewOptions
	cmd := &cobra.Command{
		Use:   "interview <affirmation...>",
		Short: "Run a guided interview, then evaluate the answers",
		Long: `Ask the questions the engine still needs, one at a time, then fold the
answers into an evaluation. Answer yes/no questions with si or no and level
questions with bajo, medio, alto or a number in [0,1]. Ctrl-D finishes early
and evaluates what has been answered so far.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInterview(cmd, strings.Join(args, " "), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.seed, "seed", "", "YAML RawInput with already known signals")
	f.BoolVar(&opts.detect, "detect", false, "seed flags and keywords detected in the affirmation")
	f.BoolVar(&opts.narrate, "narrate", false, "ask the configured narrator for a narrative")
	f.StringVarP(&opts.format, "format", "o", formatText, "output format: json or text")
	return cmd
}

func (c *cli) runInterview(cmd *cobra.Command, affirmation string, opts interviewOptions) error {
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
	controller, err := interview.NewController(cfg.Interview)
	if err != nil {
		return err
	}

	var seed discernment.RawInput
	if opts.seed != "" {
		if seed, err = readRawInput(opts.seed, c.in); err != nil {
			return err
		}
	}
	seed.Affirmation = affirmation
	var detected *signals.Result
	if opts.detect {
		d := signals.Detect(affirmation)
		d.Apply(&seed)
		detected = &d
	}

	session, err := controller.Start(affirmation, seed)
	if err != nil {
		return err
	}

	answerer, closer, err := c.newAnswerer(c.in, c.out)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	runErr := controller.Run(ctx, session, answerer)
	_ = closer.Close()
	cancelled := errors.Is(runErr, context.Canceled)
	if runErr != nil && !cancelled && !errors.Is(runErr, errFinishedEarly) {
		return runErr
	}
	if cancelled {
		// Folded and evaluated like an early finish, without a narrator call.
		ctx = context.WithoutCancel(ctx)
		opts.narrate = false
	}

	fold := controller.Fold(session)
	fmt.Fprintf(c.errOut, "\n%s\ncompleteness: %.2f (%s)\n", fold.AgentNotes, session.GlobalCompleteness(), fold.Level)
	if len(fold.Unparsed) > 0 {
		fmt.Fprintf(c.errOut, "unreadable answers left neutral: %s\n", strings.Join(fold.Unparsed, ", "))
	}
	if fold.Exhausted != nil {
		fmt.Fprintf(c.errOut, "%v\n", fold.Exhausted)
	}

	result, err := svc.Evaluate(ctx, discernment.EvaluateRequest{
		Input:      fold.Input,
		AgentNotes: fold.AgentNotes,
		Narrate:    opts.narrate,
	})
	if err != nil {
		return err
	}
	return render(c.out, opts.format, result, detected)
}
