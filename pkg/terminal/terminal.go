package terminal

import (
	"os"

	"github.com/arthur-debert/switchtower/pkg/logging"
	"golang.org/x/term"
)

// Controller toggles echo on one terminal file descriptor.
type Controller struct {
	fd        int
	supported bool
	saved     *state
}

// New returns a controller for f. When f is not a terminal the
// controller is inert.
func New(f *os.File) *Controller {
	fd := int(f.Fd())
	return &Controller{
		fd:        fd,
		supported: term.IsTerminal(fd) && platformSupported,
	}
}

// Stdin returns a controller for the process standard input.
func Stdin() *Controller {
	return New(os.Stdin)
}

// Supported reports whether Echo has any effect.
func (c *Controller) Supported() bool {
	return c.supported
}

// Echo disables (false) or restores (true) echo and canonical mode.
// Disabling records the prior state once, so repeated calls are safe and
// re-enabling returns the terminal to exactly what it was.
func (c *Controller) Echo(enable bool) {
	if !c.supported {
		return
	}
	if enable {
		c.restore()
	} else {
		c.suppress()
	}
}

func (c *Controller) suppress() {
	if c.saved != nil {
		return
	}

	logger := logging.GetLogger("terminal")
	current, err := getState(c.fd)
	if err != nil {
		logger.Trace().Err(err).Msg("Cannot read terminal state, echo left on")
		return
	}
	if err := setState(c.fd, current.withoutEcho()); err != nil {
		logger.Trace().Err(err).Msg("Cannot disable echo")
		return
	}
	c.saved = current
}

func (c *Controller) restore() {
	logger := logging.GetLogger("terminal")

	target := c.saved
	if target == nil {
		current, err := getState(c.fd)
		if err != nil {
			logger.Trace().Err(err).Msg("Cannot read terminal state")
			return
		}
		target = current.withEcho()
	}

	if err := setState(c.fd, target); err != nil {
		logger.Trace().Err(err).Msg("Cannot restore echo")
		return
	}
	c.saved = nil
}
