// Package credential provides deferred secret sources. A Source is only
// asked for its value when a consumer actually needs it, so the
// interactive prompt never runs for actions that don't authenticate.
package credential

import (
	"sync"
)

// Source produces a secret on demand.
type Source interface {
	Acquire() (string, error)
}

// Literal is a secret supplied up front, e.g. with --password.
type Literal string

// Acquire returns the literal value. It never touches the terminal.
func (l Literal) Acquire() (string, error) {
	return string(l), nil
}

// Once wraps a Source so the first successful value is reused. A failed
// acquisition is not cached and the next call asks the source again.
func Once(src Source) Source {
	if src == nil {
		return nil
	}
	if _, ok := src.(*once); ok {
		return src
	}
	return &once{src: src}
}

type once struct {
	mu    sync.Mutex
	src   Source
	value string
	done  bool
}

func (o *once) Acquire() (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.done {
		return o.value, nil
	}
	value, err := o.src.Acquire()
	if err != nil {
		return "", err
	}
	o.value, o.done = value, true
	return value, nil
}
