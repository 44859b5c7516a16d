// Package actor executes named actions against deployment hosts.
//
// An Actor maps action names to handlers. A few built-in handlers are
// registered first; every task defined by the loaded recipes becomes a
// handler of the same name, replacing a built-in if the names collide.
//
// A task first invokes the tasks in its invoke list, in order, and then
// runs each of its commands on every host of its roles. Commands are Go
// text/template strings rendered over the configuration variables:
//
//	commands = ["cd {{ .deploy_to }} && git pull origin {{ .branch }}"]
//
// The "password" template function acquires the credential on first use.
// In pretend mode commands are rendered and printed but nothing runs, no
// connection is opened and the credential is never acquired.
package actor
