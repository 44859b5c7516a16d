//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import "golang.org/x/sys/unix"

const platformSupported = true

type state struct {
	termios unix.Termios
}

func getState(fd int) (*state, error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, err
	}
	return &state{termios: *termios}, nil
}

func setState(fd int, s *state) error {
	termios := s.termios
	return unix.IoctlSetTermios(fd, ioctlWriteTermios, &termios)
}

func (s *state) withoutEcho() *state {
	next := *s
	next.termios.Lflag &^= unix.ECHO | unix.ICANON
	return &next
}

func (s *state) withEcho() *state {
	next := *s
	next.termios.Lflag |= unix.ECHO | unix.ICANON
	return &next
}
