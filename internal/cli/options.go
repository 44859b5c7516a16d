package cli

import (
	"github.com/arthur-debert/switchtower/pkg/credential"
)

// Var is one --set override.
type Var struct {
	Name  string
	Value string
}

// Options is the validated command line. It is read-only once Parse
// returns.
type Options struct {
	verbosity int
	recipes   []string
	actions   []string
	vars      []Var
	password  credential.Source
	pretend   bool
}

// Verbosity is the number of -v flags.
func (o *Options) Verbosity() int { return o.verbosity }

// Recipes are the recipe names in command-line order.
func (o *Options) Recipes() []string { return append([]string(nil), o.recipes...) }

// Actions are the action names in command-line order.
func (o *Options) Actions() []string { return append([]string(nil), o.actions...) }

// Vars are the overrides with their final values, ordered by each name's
// first appearance.
func (o *Options) Vars() []Var { return append([]Var(nil), o.vars...) }

// Var returns the final value of one override.
func (o *Options) Var(name string) (string, bool) {
	for _, v := range o.vars {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// Password is a credential.Literal for -p, otherwise the interactive
// prompt. Neither has been acquired.
func (o *Options) Password() credential.Source { return o.password }

// Pretend reports whether commands should only be printed.
func (o *Options) Pretend() bool { return o.pretend }

// setVar records an override; a repeated name keeps its first position
// and takes the new value.
func (o *Options) setVar(name, value string) {
	for i := range o.vars {
		if o.vars[i].Name == name {
			o.vars[i].Value = value
			return
		}
	}
	o.vars = append(o.vars, Var{Name: name, Value: value})
}
