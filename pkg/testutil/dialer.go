package testutil

import (
	"io"
	"sync"

	"github.com/arthur-debert/switchtower/pkg/errors"
	"github.com/arthur-debert/switchtower/pkg/transport"
)

// Execution is one command a RecordingDialer's runner was asked to run.
type Execution struct {
	Host    string
	Command string
}

// RecordingDialer hands out runners that record commands. A command listed
// in Fail returns a transport error after being recorded.
type RecordingDialer struct {
	Fail map[string]bool

	mu         sync.Mutex
	dials      []string
	executions []Execution
	closed     int
}

// NewRecordingDialer returns a dialer that fails the given commands.
func NewRecordingDialer(fail ...string) *RecordingDialer {
	d := &RecordingDialer{Fail: make(map[string]bool)}
	for _, command := range fail {
		d.Fail[command] = true
	}
	return d
}

// Dial implements transport.Dialer.
func (d *RecordingDialer) Dial(host transport.Host) (transport.Runner, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials = append(d.dials, host.String())
	return &recordingRunner{dialer: d, host: host.String()}, nil
}

// Dials returns the hosts dialed so far, in order.
func (d *RecordingDialer) Dials() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dials...)
}

// Executions returns every recorded command, in order.
func (d *RecordingDialer) Executions() []Execution {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Execution(nil), d.executions...)
}

// Commands returns the recorded commands without their hosts.
func (d *RecordingDialer) Commands() []string {
	var commands []string
	for _, e := range d.Executions() {
		commands = append(commands, e.Command)
	}
	return commands
}

// Closed reports how many runners were closed.
func (d *RecordingDialer) Closed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type recordingRunner struct {
	dialer *RecordingDialer
	host   string
}

func (r *recordingRunner) Run(command string, _, _ io.Writer) error {
	d := r.dialer
	d.mu.Lock()
	d.executions = append(d.executions, Execution{Host: r.host, Command: command})
	fail := d.Fail[command]
	d.mu.Unlock()

	if fail {
		return errors.Newf(errors.ErrTransport, "command %q exited with status 1", command).
			WithDetail("exit_status", 1)
	}
	return nil
}

func (r *recordingRunner) Close() error {
	r.dialer.mu.Lock()
	defer r.dialer.mu.Unlock()
	r.dialer.closed++
	return nil
}
