package main

import (
	"io"
	"time"

	"github.com/briandowns/spinner"

	"github.com/danpilch/winmem/pkg/output"
)

const spinnerRefreshRate = 100 * time.Millisecond

// progress is the part of a terminal spinner the commands use.
type progress interface {
	Start()
	Stop()
}

type noProgress struct{}

func (noProgress) Start() {}
func (noProgress) Stop()  {}

var newSpinner = func(w io.Writer, suffix string) progress {
	s := spinner.New(spinner.CharSets[11], spinnerRefreshRate, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	return s
}

// progressFor returns a spinner on stderr for table output and a no-op for
// machine-readable formats.
func (a *app) progressFor(suffix string) progress {
	if a.format != output.FormatTable {
		return noProgress{}
	}
	return newSpinner(a.stderr, suffix)
}

// withProgress runs fn while a spinner is shown.
func withProgress[T any](a *app, suffix string, fn func() (T, error)) (T, error) {
	p := a.progressFor(suffix)
	p.Start()
	defer p.Stop()
	return fn()
}
