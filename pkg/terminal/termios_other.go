//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package terminal

import "errors"

const platformSupported = false

var errUnsupported = errors.New("terminal control is not supported on this platform")

type state struct{}

func getState(int) (*state, error) { return nil, errUnsupported }

func setState(int, *state) error { return errUnsupported }

func (s *state) withoutEcho() *state { return s }

func (s *state) withEcho() *state { return s }
