// Package instrumentation provides the call-site helpers host command
// handlers use to report outcomes and durations into the metrics registry.
package instrumentation

import (
	"time"

	"github.com/maalogs/telemetry/metrics"
)

// Status values reported for completed commands.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Timer measures one command execution. The zero value is not usable; obtain
// one from StartTimer immediately before running the command.
type Timer struct {
	command string
	start   time.Time
	done    bool
}

// StartTimer begins timing the named command.
func StartTimer(command string) *Timer {
	return &Timer{
		command: command,
		start:   time.Now(),
	}
}

// Done reports the command as completed, mapping a nil error to
// StatusSuccess and anything else to StatusError. Calling Done more than
// once records only the first completion.
func (t *Timer) Done(err error) {
	if t == nil || t.done {
		return
	}
	t.done = true

	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	metrics.Record(t.command, status, time.Since(t.start).Seconds())
}

// Observe runs fn as the named command, records its outcome and duration,
// and returns fn's error unchanged.
func Observe(command string, fn func() error) error {
	timer := StartTimer(command)
	err := fn()
	timer.Done(err)
	return err
}
