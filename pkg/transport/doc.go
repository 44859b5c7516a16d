// Package transport runs shell commands on deployment hosts.
//
// A Runner executes one command at a time and streams its output. The
// local runner shells out through "sh -c"; the SSH runner opens a session
// per command over a single lazily dialed connection. Dialers turn a Host
// into the right Runner.
package transport
