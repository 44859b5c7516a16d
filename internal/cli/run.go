package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/switchtower/internal/version"
	"github.com/arthur-debert/switchtower/pkg/config"
	"github.com/arthur-debert/switchtower/pkg/credential"
	"github.com/arthur-debert/switchtower/pkg/dispatch"
	"github.com/arthur-debert/switchtower/pkg/errors"
	"github.com/arthur-debert/switchtower/pkg/logging"
	"github.com/arthur-debert/switchtower/pkg/styles"
	"github.com/arthur-debert/switchtower/pkg/terminal"
	"github.com/rs/zerolog/log"
)

// Exit codes
const (
	ExitOK          = 0
	ExitError       = 1
	ExitUsage       = 2
	ExitLoad        = 3
	ExitDispatch    = 4
	ExitInterrupted = 130
)

// Env is everything Run touches outside its arguments.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Echo controls terminal echo around the password prompt. Nil leaves
	// the terminal alone.
	Echo credential.EchoController

	// LoadSettings reads the tool settings. Nil means config.LoadSettings.
	LoadSettings func() (*config.Settings, error)

	// NewConfiguration builds the run configuration. Nil means a
	// *config.Configuration writing to Stdout and Stderr.
	NewConfiguration func(settings *config.Settings, env Env) Configuration
}

// Main runs switchtower on the process's own streams and terminal.
func Main(args []string) int {
	return Run(args, Env{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Echo:   terminal.Stdin(),
	})
}

// Run parses args, loads the configuration and dispatches the actions.
// It returns the process exit code and never exits itself.
func Run(args []string, env Env) int {
	opts, err := ParseWithPrompt(args, credential.NewPrompt(env.Stdin, env.Stdout, env.Echo))
	switch {
	case stderrors.Is(err, ErrHelp):
		if err := WriteUsage(env.Stdout); err != nil {
			return ExitError
		}
		return ExitOK
	case stderrors.Is(err, ErrVersion):
		_, _ = fmt.Fprintf(env.Stdout, MsgVersionFormat, version.Name, version.Version)
		return ExitOK
	case err != nil:
		report(env.Stderr, styles.New(env.Stderr, styles.ColorAuto), err)
		return ExitCode(err)
	}

	settings := loadSettings(env)
	mode, colorErr := styles.ParseColorMode(settings.Output.Color)
	logging.SetupLogger(env.Stderr, opts.Verbosity(), !styles.UseColor(env.Stderr, mode))
	if colorErr != nil {
		log.Warn().Err(colorErr).Msg("Ignoring output.color setting")
	}
	errPalette := styles.New(env.Stderr, mode)

	newConfiguration := env.NewConfiguration
	if newConfiguration == nil {
		newConfiguration = defaultConfiguration
	}

	a, err := Load(opts, newConfiguration(settings, env))
	if err != nil {
		report(env.Stderr, errPalette, err)
		return ExitCode(err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Debug().Err(err).Msg("Closing connections")
		}
	}()

	if err := dispatch.Run(a, opts.Actions()); err != nil {
		report(env.Stderr, errPalette, err)
		return ExitCode(err)
	}
	return ExitOK
}

func loadSettings(env Env) *config.Settings {
	load := env.LoadSettings
	if load == nil {
		load = config.LoadSettings
	}
	settings, err := load()
	if err != nil {
		_, _ = fmt.Fprintf(env.Stderr, "warning: %v; using default settings\n", err)
		return config.DefaultSettings()
	}
	return settings
}

func defaultConfiguration(settings *config.Settings, env Env) Configuration {
	// an invalid color mode was already reported by Run
	mode, _ := styles.ParseColorMode(settings.Output.Color)
	return config.New(
		config.WithSettings(settings),
		config.WithOutput(env.Stdout, env.Stderr),
		config.WithPalette(styles.New(env.Stdout, mode)),
	)
}

// report writes err for humans, with a pointer to --help for usage
// errors.
func report(w io.Writer, palette *styles.Palette, err error) {
	_, _ = fmt.Fprintf(w, "%s %s\n", palette.Render("Error", MsgErrPrefix), errors.Describe(err))
	if errors.IsErrorCode(err, errors.ErrUsage) {
		_, _ = fmt.Fprintln(w, MsgHelpHint)
	}
}

// ExitCode maps an error from Parse, Load or dispatch to a process exit
// code. An interrupted password prompt wins over whatever wrapped it.
func ExitCode(err error) int {
	switch {
	case err == nil, stderrors.Is(err, ErrHelp), stderrors.Is(err, ErrVersion):
		return ExitOK
	case errors.HasErrorCode(err, errors.ErrInterrupted):
		return ExitInterrupted
	}

	switch errors.GetErrorCode(err) {
	case errors.ErrUsage:
		return ExitUsage
	case errors.ErrStandardRecipe, errors.ErrRecipeLoad, errors.ErrRecipeNotFound,
		errors.ErrRecipeInvalid, errors.ErrConfigLoad, errors.ErrConfigParse:
		return ExitLoad
	case errors.ErrActionNotFound, errors.ErrActionFailed:
		return ExitDispatch
	default:
		return ExitError
	}
}
