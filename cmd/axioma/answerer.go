package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"axioma/internal/interview/models"
	"axioma/internal/interview/ports"
)

// errFinishedEarly ends an interview at the caller's request. The session is
// still folded and evaluated.
var errFinishedEarly = errors.New("interview finished by caller")

type lineReader interface {
	Readline() (string, error)
}

type readlineAnswerer struct {
	rl  lineReader
	out io.Writer
}

func newReadlineAnswerer(in io.Reader, out io.Writer) (ports.Answerer, io.Closer, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "fin",
		Stdin:           readline.NewCancelableStdin(in),
		Stdout:          out,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize readline: %w", err)
	}
	return &readlineAnswerer{rl: rl, out: out}, rl, nil
}

func (a *readlineAnswerer) Answer(ctx context.Context, q models.Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(a.out, "\n[%s] %s\n", q.Axis.Short(), promptText(q))
	line, err := a.rl.Readline()
	if err != nil {
		return "", answerError(err)
	}
	return line, nil
}

// promptText appends the answer hint unless the question already ends with
// one in parentheses.
func promptText(q models.Question) string {
	if strings.HasSuffix(strings.TrimSpace(q.Text), ")") {
		return q.Text
	}
	return q.Text + " " + answerHint(q.Kind)
}

func answerHint(kind models.QuestionKind) string {
	switch kind {
	case models.KindLevel:
		return "(bajo / medio / alto, o 0-1)"
	default:
		return "(si / no)"
	}
}

// answerError turns Ctrl-C and Ctrl-D into an early finish.
func answerError(err error) error {
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return errFinishedEarly
	}
	return err
}
