package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig describes a command that runs in numbered steps
type RunnerConfig struct {
	Title     string            // e.g., "Catalog warm-up"
	Command   string            // e.g., "giftgrid warm"
	Params    map[string]string // shown in the header
	StepNames []string
	Output    io.Writer // default os.Stdout

	// Troubleshooting returns tips for a failure. Optional.
	Troubleshooting func(error) []string
}

// Runner prints header, step progress and a result box around an operation
type Runner struct {
	config   RunnerConfig
	header   *Header
	progress *Progress
	out      io.Writer
	width    int
}

// Operation is the work a Runner wraps. It returns details for the result
// box.
type Operation func(onStep StepCallback) (map[string]string, error)

// NewRunner creates a runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := GetTerminalWidth()

	var p *Progress
	if n := len(config.StepNames); n > 0 {
		p = NewProgress("", n).SetWidth(width).SetStepNames(config.StepNames)
	}

	return &Runner{
		config:   config,
		header:   NewHeader(config.Title, config.Command, config.Params).SetWidth(width),
		progress: p,
		out:      config.Output,
		width:    width,
	}
}

// Run executes op, printing each finished step as it completes
func (r *Runner) Run(op Operation) (map[string]string, error) {
	start := time.Now()
	_, _ = fmt.Fprintln(r.out, r.header.Render())
	_, _ = fmt.Fprintln(r.out)

	details, err := op(r.onStep)
	elapsed := time.Since(start).Round(time.Millisecond)
	_, _ = fmt.Fprintln(r.out)

	if err != nil {
		var tips []string
		if r.config.Troubleshooting != nil {
			tips = r.config.Troubleshooting(err)
		}
		_, _ = fmt.Fprintln(r.out, NewFailureResult(r.config.Title+" failed", err, tips).SetWidth(r.width).Render())
		return details, err
	}

	if details == nil {
		details = make(map[string]string)
	}
	details["Duration"] = elapsed.String()
	_, _ = fmt.Fprintln(r.out, NewSuccessResult(r.config.Title+" complete", details).SetWidth(r.width).Render())
	return details, nil
}

func (r *Runner) onStep(n int, status StepStatus, message string) {
	if r.progress == nil || n < 1 || n > len(r.progress.Steps) {
		return
	}
	r.progress.UpdateStep(n, status, message)
	line := r.progress.renderStepLine(r.progress.Steps[n-1])
	switch status {
	case StepRunning:
		// overwritten when the step finishes
		_, _ = fmt.Fprint(r.out, line+"\r")
	default:
		_, _ = fmt.Fprintln(r.out, line)
	}
}
