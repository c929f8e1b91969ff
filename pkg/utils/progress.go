package utils

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// StepProgress reports a fixed sequence of pipeline steps as "[n/total] description" lines
type StepProgress struct {
	out       io.Writer
	total     int
	current   int
	step      string
	startTime time.Time
	width     int
	now       func() time.Time
}

// NewStepProgress creates a step reporter writing to out. A nil out disables output.
func NewStepProgress(out io.Writer, total int) *StepProgress {
	return NewStepProgressWithClock(out, total, time.Now)
}

// NewStepProgressWithClock is NewStepProgress with an injected clock
func NewStepProgressWithClock(out io.Writer, total int, now func() time.Time) *StepProgress {
	if out == nil {
		out = io.Discard
	}
	start := now()
	return &StepProgress{
		out:       out,
		total:     total,
		startTime: start,
		width:     len(fmt.Sprint(total)),
		now:       now,
	}
}

// Start begins the next step
func (sp *StepProgress) Start(description string) {
	sp.current++
	sp.step = description
	fmt.Fprintf(sp.out, "[%*d/%d] %s\n", sp.width, sp.current, sp.total, description)
}

// Current returns the description of the running step
func (sp *StepProgress) Current() string {
	return sp.step
}

// Elapsed is the time since the reporter was created
func (sp *StepProgress) Elapsed() time.Duration {
	return sp.now().Sub(sp.startTime)
}

// Finish prints a completion line
func (sp *StepProgress) Finish(summary string) {
	line := fmt.Sprintf("%s (%v)", summary, sp.Elapsed().Round(time.Millisecond))
	fmt.Fprintf(sp.out, "%s\n%s\n", strings.Repeat("-", len(line)), line)
}
