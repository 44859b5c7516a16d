package cli

import (
	"github.com/arthur-debert/switchtower/pkg/actor"
	"github.com/arthur-debert/switchtower/pkg/config"
	"github.com/arthur-debert/switchtower/pkg/errors"
	"github.com/arthur-debert/switchtower/pkg/logging"
)

// Configuration is the part of the run configuration the loader drives.
// *config.Configuration implements it.
type Configuration interface {
	SetLogLevel(verbosity int)
	Set(key string, value interface{})
	Load(name string) error
	Actor() (*actor.Actor, error)
}

var _ Configuration = (*config.Configuration)(nil)

// Load applies opts to cfg in a fixed order and returns the actor:
// verbosity, password source, pretend flag, the standard recipe, the user
// recipes in order, then the --set overrides. The password is handed over
// as a source and never acquired here.
func Load(opts *Options, cfg Configuration) (*actor.Actor, error) {
	logger := logging.GetLogger("cli")
	done := logging.LogOperationStart(logger, "load")
	defer done()

	cfg.SetLogLevel(opts.Verbosity())
	cfg.Set("password", opts.Password())
	cfg.Set("pretend", opts.Pretend())

	if err := cfg.Load(config.StandardRecipe); err != nil {
		return nil, errors.Wrap(err, errors.ErrStandardRecipe, MsgErrStandard)
	}

	for _, name := range opts.Recipes() {
		logger.Debug().Str("recipe", name).Msg("Loading recipe")
		if err := cfg.Load(name); err != nil {
			return nil, errors.Wrapf(err, errors.ErrRecipeLoad, MsgErrRecipeLoad, name).
				WithDetail("recipe", name)
		}
	}

	for _, v := range opts.Vars() {
		logger.Debug().Str("name", v.Name).Msg("Applying override")
		cfg.Set(v.Name, v.Value)
	}

	a, err := cfg.Actor()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, MsgErrActor)
	}
	return a, nil
}
