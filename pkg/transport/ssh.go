package transport

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/switchtower/pkg/credential"
	"github.com/arthur-debert/switchtower/pkg/errors"
	"github.com/arthur-debert/switchtower/pkg/logging"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHRunner runs commands over one SSH connection, dialed on first use.
type SSHRunner struct {
	Host                        Host
	Keys                        []string
	Password                    credential.Source
	KnownHostsPath              string
	InsecureSkipHostKeyChecking bool
	Timeout                     time.Duration

	mu     sync.Mutex
	client *ssh.Client
}

func (r *SSHRunner) Run(command string, stdout, stderr io.Writer) error {
	client, err := r.connect()
	if err != nil {
		return err
	}

	session, err := client.NewSession()
	if err != nil {
		return errors.Wrapf(err, errors.ErrTransport, "cannot open session on %s", r.Host)
	}
	defer func() { _ = session.Close() }()

	session.Stdout = stdout
	session.Stderr = stderr

	if err := session.Run(command); err != nil {
		stErr := errors.Wrapf(err, errors.ErrTransport, "command failed on %s", r.Host)
		if exitErr, ok := err.(*ssh.ExitError); ok {
			stErr.WithDetail("exit_status", exitErr.ExitStatus())
		}
		return stErr
	}
	return nil
}

// Close closes the connection if one was opened.
func (r *SSHRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

func (r *SSHRunner) connect() (*ssh.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, nil
	}

	client, err := r.dial()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTransport, "cannot connect to %s", r.Host)
	}
	r.client = client
	return client, nil
}

func (r *SSHRunner) dial() (*ssh.Client, error) {
	config, err := r.clientConfig()
	if err != nil {
		return nil, err
	}

	address := r.Host.Address()
	logger := logging.GetLogger("transport")
	logger.Debug().Str("address", address).Str("user", r.Host.User).Msg("Dialing SSH")

	if r.Timeout <= 0 {
		return ssh.Dial("tcp", address, config)
	}

	conn, err := net.DialTimeout("tcp", address, r.Timeout)
	if err != nil {
		return nil, err
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return ssh.NewClient(clientConn, chans, reqs), nil
}

func (r *SSHRunner) clientConfig() (*ssh.ClientConfig, error) {
	if r.Host.User == "" {
		return nil, errors.Newf(errors.ErrHostSpec, "no user for %s; set the 'user' variable or use user@host", r.Host.Name)
	}

	var hostKeyCallback ssh.HostKeyCallback
	if r.InsecureSkipHostKeyChecking {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	} else {
		callback, err := r.knownHostsCallback()
		if err != nil {
			return nil, err
		}
		hostKeyCallback = callback
	}

	return &ssh.ClientConfig{
		User:            r.Host.User,
		Auth:            r.authMethods(),
		HostKeyCallback: hostKeyCallback,
		Timeout:         r.Timeout,
	}, nil
}

// authMethods offers public keys first, then the password. The password
// source is only consulted if the server gets that far.
func (r *SSHRunner) authMethods() []ssh.AuthMethod {
	var methods []ssh.AuthMethod

	if signers := r.signers(); len(signers) > 0 {
		methods = append(methods, ssh.PublicKeys(signers...))
	}

	if r.Password != nil {
		methods = append(methods,
			ssh.PasswordCallback(r.Password.Acquire),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					if echos[i] {
						continue
					}
					password, err := r.Password.Acquire()
					if err != nil {
						return nil, err
					}
					answers[i] = password
				}
				return answers, nil
			}),
		)
	}

	return methods
}

func (r *SSHRunner) signers() []ssh.Signer {
	logger := logging.GetLogger("transport")

	var signers []ssh.Signer
	for _, path := range r.Keys {
		path = ExpandPath(strings.TrimSpace(path))
		if path == "" {
			continue
		}
		privateKey, err := os.ReadFile(path)
		if err != nil {
			logger.Debug().Err(err).Str("key", path).Msg("Skipping unreadable key")
			continue
		}
		signer, err := ssh.ParsePrivateKey(privateKey)
		if err != nil {
			logger.Debug().Err(err).Str("key", path).Msg("Skipping unusable key")
			continue
		}
		signers = append(signers, signer)
	}
	return signers
}

func (r *SSHRunner) knownHostsCallback() (ssh.HostKeyCallback, error) {
	path := ExpandPath(strings.TrimSpace(r.KnownHostsPath))
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.New(errors.ErrTransport, "known hosts path not set and home dir unavailable")
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}

	callback, err := knownhosts.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTransport, "cannot read known hosts file %s", path)
	}
	return callback, nil
}
