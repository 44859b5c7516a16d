package config

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/switchtower/pkg/actor"
	"github.com/arthur-debert/switchtower/pkg/credential"
	"github.com/arthur-debert/switchtower/pkg/errors"
	"github.com/arthur-debert/switchtower/pkg/logging"
	"github.com/arthur-debert/switchtower/pkg/recipe"
	"github.com/arthur-debert/switchtower/pkg/styles"
	"github.com/arthur-debert/switchtower/pkg/transport"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// Configuration is the mutable state of one run.
type Configuration struct {
	vars *koanf.Koanf

	// Credential sources live outside koanf, which copies values and
	// cannot hold them.
	credentials map[string]credential.Source

	roles   []actor.Role
	tasks   map[string]*recipe.Task
	sources []string

	settings *Settings
	stdout   io.Writer
	stderr   io.Writer
	palette  *styles.Palette
	dialer   transport.Dialer
	logger   zerolog.Logger
}

// Option configures a Configuration.
type Option func(*Configuration)

// WithSettings sets the tool settings. The embedded defaults are used
// otherwise.
func WithSettings(s *Settings) Option {
	return func(c *Configuration) { c.settings = s }
}

// WithOutput sets where actions write.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *Configuration) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// WithPalette sets the styles used for action output.
func WithPalette(p *styles.Palette) Option {
	return func(c *Configuration) { c.palette = p }
}

// WithDialer replaces the transport used by the actor.
func WithDialer(d transport.Dialer) Option {
	return func(c *Configuration) { c.dialer = d }
}

// New creates an empty configuration.
func New(opts ...Option) *Configuration {
	c := &Configuration{
		vars:        koanf.New("."),
		credentials: make(map[string]credential.Source),
		tasks:       make(map[string]*recipe.Task),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		logger:      logging.GetLogger("config"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.settings == nil {
		c.settings = DefaultSettings()
	}
	return c
}

// Set stores a variable. A credential.Source is kept as is and never
// acquired here; any other value replaces a credential of the same name.
func (c *Configuration) Set(key string, value interface{}) {
	if src, ok := value.(credential.Source); ok {
		c.credentials[key] = src
		c.vars.Delete(key)
		c.logger.Trace().Str("key", key).Msg("Set credential")
		return
	}

	delete(c.credentials, key)
	if err := c.vars.Set(key, value); err != nil {
		// koanf only fails on unflatten conflicts, which a single key can't have
		c.logger.Warn().Err(err).Str("key", key).Msg("Cannot set variable")
		return
	}
	c.logger.Trace().Str("key", key).Interface("value", value).Msg("Set variable")
}

// Get returns a variable, or the credential source stored under key.
func (c *Configuration) Get(key string) interface{} {
	if src, ok := c.credentials[key]; ok {
		return src
	}
	return c.vars.Get(key)
}

// Credential returns the source stored under key. A plain string variable
// of that name is treated as a literal.
func (c *Configuration) Credential(key string) credential.Source {
	if src, ok := c.credentials[key]; ok {
		return src
	}
	if s := c.vars.String(key); s != "" {
		return credential.Literal(s)
	}
	return nil
}

// Variables returns a copy of the variables.
func (c *Configuration) Variables() map[string]interface{} {
	return c.vars.Raw()
}

// Sources lists the recipes loaded so far, in order.
func (c *Configuration) Sources() []string {
	return append([]string(nil), c.sources...)
}

// Tasks returns the merged tasks by name.
func (c *Configuration) Tasks() map[string]*recipe.Task {
	out := make(map[string]*recipe.Task, len(c.tasks))
	for name, task := range c.tasks {
		out[name] = task
	}
	return out
}

// Roles returns the merged roles in first-definition order.
func (c *Configuration) Roles() []actor.Role {
	out := make([]actor.Role, len(c.roles))
	for i, role := range c.roles {
		out[i] = actor.Role{Name: role.Name, Hosts: append([]string(nil), role.Hosts...)}
	}
	return out
}

// SetLogLevel sets the level of this configuration's logger and of the
// actor it builds.
func (c *Configuration) SetLogLevel(verbosity int) {
	c.logger = c.logger.Level(logging.LevelFor(verbosity))
}

// Load resolves a recipe by name and merges it in. "standard" is the
// embedded standard recipe; anything else is a file.
func (c *Configuration) Load(name string) error {
	r, err := c.resolve(name)
	if err != nil {
		return err
	}
	c.merge(r)
	c.logger.Debug().Str("recipe", r.Source).Int("tasks", len(r.Tasks)).Msg("Loaded recipe")
	return nil
}

func (c *Configuration) resolve(name string) (*recipe.Recipe, error) {
	if name == StandardRecipe {
		return recipe.Decode(StandardRecipe, standardRecipe, recipe.FormatTOML)
	}

	path, err := FindRecipe(name, c.settings.Recipes.Path)
	if err != nil {
		return nil, err
	}
	return recipe.ParseFile(path)
}

// FindRecipe locates a recipe file. name is tried as given, then with
// each known extension when it has none. Relative names not found from
// the working directory are looked up in searchPath.
func FindRecipe(name string, searchPath []string) (string, error) {
	if path, ok := findWithExtensions(name); ok {
		return path, nil
	}

	if !filepath.IsAbs(name) {
		for _, dir := range searchPath {
			if dir == "" {
				continue
			}
			if path, ok := findWithExtensions(filepath.Join(transport.ExpandPath(dir), name)); ok {
				return path, nil
			}
		}
	}

	return "", errors.Newf(errors.ErrRecipeNotFound, "recipe %s not found", name).
		WithDetail("recipe", name)
}

func findWithExtensions(base string) (string, bool) {
	if isFile(base) {
		return base, true
	}
	if filepath.Ext(base) != "" {
		return "", false
	}
	for _, ext := range recipe.Extensions {
		if isFile(base + ext) {
			return base + ext, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// merge folds r into the configuration: variables deep-merge with later
// values winning, role hosts accumulate without duplicates, and tasks
// replace earlier tasks of the same name.
func (c *Configuration) merge(r *recipe.Recipe) {
	if len(r.Variables) > 0 {
		for key := range r.Variables {
			delete(c.credentials, key)
		}
		if err := c.vars.Load(confmap.Provider(r.Variables, ""), nil); err != nil {
			c.logger.Warn().Err(err).Str("recipe", r.Source).Msg("Cannot merge variables")
		}
	}

	roleNames := make([]string, 0, len(r.Roles))
	for name := range r.Roles {
		roleNames = append(roleNames, name)
	}
	sort.Strings(roleNames)
	for _, name := range roleNames {
		c.addRole(name, r.Roles[name])
	}

	for name, task := range r.Tasks {
		c.tasks[name] = task
	}

	c.sources = append(c.sources, r.Source)
}

func (c *Configuration) addRole(name string, hosts []string) {
	idx := -1
	for i := range c.roles {
		if c.roles[i].Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.roles = append(c.roles, actor.Role{Name: name})
		idx = len(c.roles) - 1
	}

	role := &c.roles[idx]
	for _, host := range hosts {
		dup := false
		for _, existing := range role.Hosts {
			if existing == host {
				dup = true
				break
			}
		}
		if !dup {
			role.Hosts = append(role.Hosts, host)
		}
	}
}

// Actor builds the executor from the current state.
func (c *Configuration) Actor() (*actor.Actor, error) {
	logger := logging.GetLogger("actor").Level(c.logger.GetLevel())

	return actor.New(actor.Options{
		Variables:  c.vars.Raw(),
		Roles:      c.Roles(),
		Tasks:      c.Tasks(),
		Pretend:    c.vars.Bool("pretend"),
		Password:   c.Credential("password"),
		Dialer:     c.dialer,
		SSHTimeout: c.settings.SSH.Timeout,
		KnownHosts: c.settings.SSH.KnownHosts,
		Stdout:     c.stdout,
		Stderr:     c.stderr,
		Palette:    c.palette,
		Logger:     &logger,
	})
}
