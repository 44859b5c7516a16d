// Package registry provides a generic, type-safe registry for looking
// things up by name. The actor uses it to map action names to handlers.
package registry
