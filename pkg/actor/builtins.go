package actor

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/switchtower/pkg/errors"
)

const (
	// ActionShowTasks lists every action with its description.
	ActionShowTasks = "show_tasks"

	// ActionInvoke runs the "command" variable on the hosts of the
	// comma-separated "roles" variable, or on every host.
	ActionInvoke = "invoke"
)

type builtin struct {
	name        string
	description string
	handler     Handler
}

var builtins = []builtin{
	{ActionShowTasks, "List the available actions", showTasks},
	{ActionInvoke, "Run the 'command' variable on the hosts of 'roles' (all when unset)", invokeCommand},
}

func showTasks(a *Actor) error {
	names := a.Actions()

	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}

	_, _ = fmt.Fprintln(a.stdout, a.palette.Render("Header", "Available actions"))
	for _, name := range names {
		padded := fmt.Sprintf("%-*s", width, name)
		line := "  " + a.palette.Render("Action", padded)
		if desc := a.Description(name); desc != "" {
			line += "  " + a.palette.Render("Muted", desc)
		}
		_, _ = fmt.Fprintln(a.stdout, strings.TrimRight(line, " "))
	}
	return nil
}

func invokeCommand(a *Actor) error {
	command := strings.TrimSpace(a.vars.String("command"))
	if command == "" {
		return errors.New(errors.ErrInvalidInput, "nothing to invoke: set the command with -s command=...")
	}

	return a.runCommands(a.stringList("roles"), []string{command}, a.vars.Bool("sudo"))
}
