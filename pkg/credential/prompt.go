package credential

import (
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/arthur-debert/switchtower/pkg/errors"
)

// PromptText is written before reading the secret.
const PromptText = "Password: "

// EchoController toggles terminal echo. *terminal.Controller satisfies it.
type EchoController interface {
	Echo(enable bool)
}

// flusher is implemented by buffered writers such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// Prompt reads a secret interactively. Each Acquire call prompts again;
// wrap it in Once to reuse the answer.
type Prompt struct {
	In   io.Reader
	Out  io.Writer
	Echo EchoController

	// Signals aborts the read when any of them arrives. Nil means
	// SIGINT and SIGTERM.
	Signals []os.Signal
}

// NewPrompt returns a prompt bound to the given streams and echo control.
func NewPrompt(in io.Reader, out io.Writer, echo EchoController) *Prompt {
	return &Prompt{In: in, Out: out, Echo: echo}
}

type readResult struct {
	line string
	err  error
}

// Acquire disables echo, prints PromptText, reads one line and strips its
// line terminator. Echo is restored and a newline written on every path
// out of this method, including read failures and interrupts.
func (p *Prompt) Acquire() (string, error) {
	signals := p.Signals
	if signals == nil {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, signals...)
	defer signal.Stop(interrupted)

	p.echo(false)
	defer func() {
		p.echo(true)
		_, _ = io.WriteString(p.Out, "\n")
		p.flush()
	}()

	if _, err := io.WriteString(p.Out, PromptText); err != nil {
		return "", errors.Wrap(err, errors.ErrCredential, "cannot write password prompt")
	}
	p.flush()

	// The reader goroutine outlives an interrupted prompt; the process is
	// on its way out at that point.
	results := make(chan readResult, 1)
	go func() {
		line, err := readLine(p.In)
		results <- readResult{line: line, err: err}
	}()

	select {
	case res := <-results:
		if res.err != nil {
			return "", errors.Wrap(res.err, errors.ErrCredential, "cannot read password")
		}
		return res.line, nil
	case sig := <-interrupted:
		return "", errors.Newf(errors.ErrInterrupted, "password prompt interrupted by %s", sig)
	}
}

func (p *Prompt) echo(enable bool) {
	if p.Echo != nil {
		p.Echo.Echo(enable)
	}
}

func (p *Prompt) flush() {
	if f, ok := p.Out.(flusher); ok {
		_ = f.Flush()
	}
}

// readLine reads up to and including the first newline without reading
// ahead, so input after the line stays available to later readers.
func readLine(r io.Reader) (string, error) {
	var b strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return strings.TrimSuffix(b.String(), "\r"), nil
			}
			b.WriteByte(buf[0])
		}
		if err == io.EOF {
			if b.Len() == 0 {
				return "", io.ErrUnexpectedEOF
			}
			return strings.TrimSuffix(b.String(), "\r"), nil
		}
		if err != nil {
			return "", err
		}
	}
}
