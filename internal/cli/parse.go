package cli

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/arthur-debert/switchtower/pkg/credential"
	"github.com/arthur-debert/switchtower/pkg/errors"
	"github.com/arthur-debert/switchtower/pkg/terminal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// ErrHelp is returned by Parse when -h/--help was given.
	ErrHelp = stderrors.New("help requested")

	// ErrVersion is returned by Parse when -V/--version was given.
	ErrVersion = stderrors.New("version requested")
)

// flagValues receives the raw flag values.
type flagValues struct {
	actions   []string
	password  string
	pretend   bool
	recipes   []string
	sets      []string
	verbosity int
	help      bool
	version   bool
}

// noPretendValue backs --no-pretend by writing the negation into the
// --pretend value, so the last of the two wins.
type noPretendValue struct{ pretend *bool }

var _ pflag.Value = noPretendValue{}

func (v noPretendValue) String() string { return strconv.FormatBool(!*v.pretend) }
func (v noPretendValue) Type() string   { return "bool" }
func (v noPretendValue) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*v.pretend = !b
	return nil
}

// NewRootCmd creates the root command. Flags are bound to fv; the
// command's usage template renders the help text. It is never executed.
func NewRootCmd(fv *flagValues) *cobra.Command {
	initTemplateFormatting()

	cmd := &cobra.Command{
		Use:                   MsgRootUse,
		Short:                 MsgRootShort,
		Example:               MsgExample,
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		DisableAutoGenTag:     true,
	}
	cmd.SetUsageTemplate(MsgUsageTemplate)

	fs := cmd.Flags()
	fs.SortFlags = false
	fs.StringArrayVarP(&fv.actions, "action", "a", nil, MsgFlagAction)
	fs.StringVarP(&fv.password, "password", "p", "", MsgFlagPassword)
	fs.BoolVarP(&fv.pretend, "pretend", "P", false, MsgFlagPretend)
	fs.Var(noPretendValue{pretend: &fv.pretend}, "no-pretend", MsgFlagNoPretend)
	fs.Lookup("no-pretend").NoOptDefVal = "true"
	_ = fs.MarkHidden("no-pretend")
	fs.StringArrayVarP(&fv.recipes, "recipe", "r", nil, MsgFlagRecipe)
	fs.StringArrayVarP(&fv.sets, "set", "s", nil, MsgFlagSet)
	fs.CountVarP(&fv.verbosity, "verbose", "v", MsgFlagVerbose)
	fs.BoolVarP(&fv.help, "help", "h", false, MsgFlagHelp)
	fs.BoolVarP(&fv.version, "version", "V", false, MsgFlagVersion)

	return cmd
}

// WriteUsage writes the help text to w. Headings are bold only when w is
// a terminal.
func WriteUsage(w io.Writer) error {
	var fv flagValues
	cmd := NewRootCmd(&fv)
	cmd.SetOut(w)
	return cmd.Usage()
}

// Usage renders the help text without styling.
func Usage() string {
	var b bytes.Buffer
	_ = WriteUsage(&b)
	return b.String()
}

// Parse parses the command line with the interactive prompt on the
// process's stdin and stdout as the default password source.
func Parse(args []string) (*Options, error) {
	return ParseWithPrompt(args, credential.NewPrompt(os.Stdin, os.Stdout, terminal.Stdin()))
}

// ParseWithPrompt parses and validates args. prompt is the password source
// used when -p is absent; it is not acquired. Parse has no side effects:
// help and version come back as ErrHelp and ErrVersion, and every other
// problem as a USAGE error.
func ParseWithPrompt(args []string, prompt credential.Source) (*Options, error) {
	var fv flagValues
	fs := NewRootCmd(&fv).Flags()
	fs.SetOutput(&bytes.Buffer{})

	if wantsHelp(fs, args) {
		return nil, ErrHelp
	}

	if err := fs.Parse(args); err != nil {
		if fv.help {
			return nil, ErrHelp
		}
		return nil, errors.Wrap(err, errors.ErrUsage, "invalid arguments")
	}

	if fv.help {
		return nil, ErrHelp
	}
	if fv.version {
		return nil, ErrVersion
	}

	if rest := fs.Args(); len(rest) > 0 {
		return nil, errors.Newf(errors.ErrUsage, MsgErrUnexpectedArg, rest[0])
	}
	if len(fv.recipes) == 0 {
		return nil, errors.New(errors.ErrUsage, MsgErrNoRecipe)
	}
	if len(fv.actions) == 0 {
		return nil, errors.New(errors.ErrUsage, MsgErrNoAction)
	}

	opts := &Options{
		verbosity: fv.verbosity,
		recipes:   fv.recipes,
		actions:   fv.actions,
		pretend:   fv.pretend,
	}

	for _, pair := range fv.sets {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, errors.Newf(errors.ErrUsage, MsgErrSetFormat, pair)
		}
		opts.setVar(name, value)
	}

	if fs.Changed("password") {
		opts.password = credential.Literal(fv.password)
	} else {
		opts.password = prompt
	}

	return opts, nil
}

// wantsHelp finds -h or --help anywhere before "--", so help wins even
// over arguments that would fail to parse. Tokens consumed as the value
// of a flag (-a -h) are not help.
func wantsHelp(fs *pflag.FlagSet, args []string) bool {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return false
		case arg == "-h" || arg == "--help":
			return true
		case strings.HasPrefix(arg, "--"):
			if !strings.Contains(arg, "=") && takesValue(fs.Lookup(arg[2:])) {
				i++
			}
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			// a short cluster: the first flag taking a value eats the rest
			// of the token, or the next token when it is last
			for j := 1; j < len(arg); j++ {
				if !takesValue(fs.ShorthandLookup(arg[j : j+1])) {
					continue
				}
				if j == len(arg)-1 {
					i++
				}
				break
			}
		}
	}
	return false
}

func takesValue(f *pflag.Flag) bool {
	return f != nil && f.NoOptDefVal == ""
}
