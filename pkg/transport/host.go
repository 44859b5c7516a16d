package transport

import (
	"net"
	"strconv"
	"strings"

	"github.com/arthur-debert/switchtower/pkg/errors"
)

// LocalHost is the host name that runs commands on this machine instead of
// over SSH.
const LocalHost = "local"

// DefaultPort is the SSH port used when neither the host spec nor the
// configuration gives one.
const DefaultPort = 22

// Host is a parsed [user@]host[:port] spec.
type Host struct {
	User string
	Name string
	Port int
}

// ParseHost parses spec, filling the user and port from the defaults when
// the spec omits them. IPv6 addresses with a port must be bracketed.
func ParseHost(spec, defaultUser string, defaultPort int) (Host, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Host{}, errors.New(errors.ErrHostSpec, "host spec cannot be empty")
	}

	h := Host{User: defaultUser, Port: defaultPort}
	if h.Port <= 0 {
		h.Port = DefaultPort
	}

	rest := spec
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		h.User = rest[:at]
		rest = rest[at+1:]
		if h.User == "" {
			return Host{}, errors.Newf(errors.ErrHostSpec, "host spec %q has an empty user", spec)
		}
	}

	switch {
	case strings.HasPrefix(rest, "[") || strings.Count(rest, ":") == 1:
		name, port, err := net.SplitHostPort(rest)
		if err != nil {
			// "[::1]" without a port
			if strings.HasPrefix(rest, "[") && strings.HasSuffix(rest, "]") {
				h.Name = rest[1 : len(rest)-1]
				break
			}
			return Host{}, errors.Wrapf(err, errors.ErrHostSpec, "invalid host spec %q", spec)
		}
		p, err := strconv.Atoi(port)
		if err != nil || p < 1 || p > 65535 {
			return Host{}, errors.Newf(errors.ErrHostSpec, "invalid port %q in host spec %q", port, spec)
		}
		h.Name = name
		h.Port = p
	default:
		// bare name or unbracketed IPv6 address
		h.Name = rest
	}

	if h.Name == "" {
		return Host{}, errors.Newf(errors.ErrHostSpec, "host spec %q has an empty host name", spec)
	}
	return h, nil
}

// IsLocal reports whether commands for h run on this machine.
func (h Host) IsLocal() bool {
	return h.Name == LocalHost
}

// Address is the host:port pair to dial.
func (h Host) Address() string {
	return net.JoinHostPort(h.Name, strconv.Itoa(h.Port))
}

// String renders the host in spec form. The local host is just "local".
func (h Host) String() string {
	if h.IsLocal() {
		return LocalHost
	}
	var b strings.Builder
	if h.User != "" {
		b.WriteString(h.User)
		b.WriteByte('@')
	}
	b.WriteString(h.Address())
	return b.String()
}
