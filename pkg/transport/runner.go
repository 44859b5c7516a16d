package transport

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/switchtower/pkg/credential"
)

// Runner executes shell commands on one host.
type Runner interface {
	// Run executes command and streams its output. A non-zero exit status
	// is an error.
	Run(command string, stdout, stderr io.Writer) error

	// Close releases the connection, if any.
	Close() error
}

// Dialer creates the Runner for a host.
type Dialer interface {
	Dial(host Host) (Runner, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(host Host) (Runner, error)

// Dial calls f(host).
func (f DialerFunc) Dial(host Host) (Runner, error) {
	return f(host)
}

// DefaultDialer runs "local" through the shell and everything else over SSH.
type DefaultDialer struct {
	// Timeout bounds the TCP connect and SSH handshake. Zero means none.
	Timeout time.Duration

	// KnownHosts is the known_hosts file used to verify host keys. Empty
	// means ~/.ssh/known_hosts.
	KnownHosts string

	// InsecureSkipHostKeyChecking accepts any host key.
	InsecureSkipHostKeyChecking bool

	// Keys are private key files tried for public key authentication.
	// Unreadable keys are skipped.
	Keys []string

	// Password answers password and keyboard-interactive challenges. It is
	// only acquired when a server asks for it.
	Password credential.Source
}

// Dial implements Dialer. SSH connections are not opened until the first
// command runs.
func (d *DefaultDialer) Dial(host Host) (Runner, error) {
	if host.IsLocal() {
		return NewLocalRunner(), nil
	}
	return &SSHRunner{
		Host:                        host,
		Keys:                        d.Keys,
		Password:                    d.Password,
		KnownHostsPath:              d.KnownHosts,
		InsecureSkipHostKeyChecking: d.InsecureSkipHostKeyChecking,
		Timeout:                     d.Timeout,
	}, nil
}

// ExpandPath resolves a leading "~/" against the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// ShellEscape quotes value for use as a single POSIX shell word.
func ShellEscape(value string) string {
	if value == "" {
		return "''"
	}

	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
