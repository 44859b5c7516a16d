// Package terminal toggles echo and canonical line editing on the
// controlling terminal so secrets can be read without being displayed.
//
// Every operation degrades to a no-op when the descriptor is not a
// terminal or the platform has no termios support; callers never see an
// error from this package.
package terminal
