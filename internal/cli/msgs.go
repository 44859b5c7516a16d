package cli

import (
	_ "embed"
	"strings"
)

const (
	MsgRootShort = "Run deployment actions defined by recipes"
	MsgRootUse   = "switchtower [options]"

	// Flag descriptions
	MsgFlagAction    = "An action to execute. Multiple actions may be given and run in order"
	MsgFlagPassword  = "The password to use when connecting (default: prompt for it)"
	MsgFlagPretend   = "Print the commands but don't connect to or execute anything on the servers (--no-pretend to undo)"
	MsgFlagNoPretend = "Really execute the commands"
	MsgFlagRecipe    = "A recipe file to load. Multiple recipes may be given and load in order"
	MsgFlagSet       = "Set a variable after all recipes are loaded (NAME=VALUE, repeatable)"
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagHelp      = "Display this help message"
	MsgFlagVersion   = "Display the version info for this utility"

	// Version output
	MsgVersionFormat = "%s v%s\n"

	// Error messages
	MsgErrNoRecipe      = "You must specify at least one recipe"
	MsgErrNoAction      = "You must specify at least one action"
	MsgErrSetFormat     = "invalid --set %q: expected NAME=VALUE"
	MsgErrUnexpectedArg = "unexpected argument %q"
	MsgErrStandard      = "cannot load the standard recipe; the installation looks broken"
	MsgErrRecipeLoad    = "failed to load recipe %s"
	MsgErrActor         = "cannot build the actor"
	MsgErrPrefix        = "Error:"
	MsgHelpHint         = "Run 'switchtower --help' for usage."
)

var (
	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"

	//go:embed msgs/example.txt
	msgExampleRaw string
	MsgExample    = strings.TrimRight(msgExampleRaw, "\n")
)
