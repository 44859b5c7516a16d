package actor

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/arthur-debert/switchtower/pkg/credential"
	"github.com/arthur-debert/switchtower/pkg/errors"
	"github.com/arthur-debert/switchtower/pkg/logging"
	"github.com/arthur-debert/switchtower/pkg/recipe"
	"github.com/arthur-debert/switchtower/pkg/registry"
	"github.com/arthur-debert/switchtower/pkg/styles"
	"github.com/arthur-debert/switchtower/pkg/transport"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// Handler performs one action.
type Handler func(a *Actor) error

// Role is a named, ordered list of host specs.
type Role struct {
	Name  string
	Hosts []string
}

// Options describes everything an Actor needs. Variables, roles and tasks
// are copied; later changes to the caller's values are not seen.
type Options struct {
	Variables map[string]interface{}
	Roles     []Role
	Tasks     map[string]*recipe.Task
	Pretend   bool

	// Password is wrapped with credential.Once so a run prompts at most
	// once.
	Password credential.Source

	// Dialer creates runners. When nil a transport.DefaultDialer is built
	// from the SSH fields below and the ssh_keys and
	// strict_host_key_checking variables.
	Dialer     transport.Dialer
	SSHTimeout time.Duration
	KnownHosts string

	Stdout  io.Writer
	Stderr  io.Writer
	Palette *styles.Palette
	Logger  *zerolog.Logger
}

// Actor runs actions.
type Actor struct {
	vars     *koanf.Koanf
	roles    []Role
	tasks    map[string]*recipe.Task
	pretend  bool
	password credential.Source
	dialer   transport.Dialer

	stdout  io.Writer
	stderr  io.Writer
	palette *styles.Palette
	logger  zerolog.Logger

	handlers     registry.Registry[Handler]
	descriptions map[string]string
	runners      map[string]transport.Runner
	running      map[string]bool
}

// New builds an Actor and registers the built-in and recipe handlers.
func New(opts Options) (*Actor, error) {
	vars := koanf.New(".")
	if opts.Variables != nil {
		if err := vars.Load(confmap.Provider(opts.Variables, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "cannot load actor variables")
		}
	}

	a := &Actor{
		vars:         vars,
		tasks:        make(map[string]*recipe.Task, len(opts.Tasks)),
		pretend:      opts.Pretend,
		password:     credential.Once(opts.Password),
		stdout:       opts.Stdout,
		stderr:       opts.Stderr,
		palette:      opts.Palette,
		handlers:     registry.New[Handler](),
		descriptions: make(map[string]string),
		runners:      make(map[string]transport.Runner),
		running:      make(map[string]bool),
	}
	if opts.Logger != nil {
		a.logger = *opts.Logger
	} else {
		a.logger = logging.GetLogger("actor")
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	if a.palette == nil {
		a.palette = styles.New(a.stdout, styles.ColorAuto)
	}

	for _, role := range opts.Roles {
		a.roles = append(a.roles, Role{Name: role.Name, Hosts: append([]string(nil), role.Hosts...)})
	}

	a.dialer = opts.Dialer
	if a.dialer == nil {
		a.dialer = &transport.DefaultDialer{
			Timeout:                     opts.SSHTimeout,
			KnownHosts:                  opts.KnownHosts,
			InsecureSkipHostKeyChecking: !a.strictHostKeyChecking(),
			Keys:                        a.stringList("ssh_keys"),
			Password:                    a.password,
		}
	}

	for _, b := range builtins {
		if err := a.handlers.Register(b.name, b.handler); err != nil {
			return nil, err
		}
		a.descriptions[b.name] = b.description
	}

	names := make([]string, 0, len(opts.Tasks))
	for name := range opts.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		task := opts.Tasks[name]
		a.tasks[name] = task
		if err := a.Register(name, task.Description, taskHandler(task)); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Register adds or replaces the handler for name.
func (a *Actor) Register(name, description string, h Handler) error {
	if err := a.handlers.Put(name, h); err != nil {
		return err
	}
	a.descriptions[name] = description
	return nil
}

// Has reports whether an action named name exists.
func (a *Actor) Has(name string) bool {
	return a.handlers.Has(name)
}

// Actions lists the registered action names, sorted.
func (a *Actor) Actions() []string {
	return a.handlers.List()
}

// Description returns the one-line description of an action.
func (a *Actor) Description(name string) string {
	return a.descriptions[name]
}

// Pretend reports whether commands are only printed.
func (a *Actor) Pretend() bool {
	return a.pretend
}

// Var returns a configuration variable.
func (a *Actor) Var(name string) interface{} {
	return a.vars.Get(name)
}

// Invoke runs the named action. An unknown name is ACTION_NOT_FOUND; a
// failing handler is wrapped as ACTION_FAILED.
func (a *Actor) Invoke(name string) error {
	h, err := a.handlers.Get(name)
	if err != nil {
		return errors.Newf(errors.ErrActionNotFound, "no action named '%s'", name).
			WithDetail("action", name)
	}

	if a.running[name] {
		return errors.Newf(errors.ErrActionFailed, "action '%s' invokes itself", name).
			WithDetail("action", name)
	}
	a.running[name] = true
	defer delete(a.running, name)

	a.logger.Debug().Str("action", name).Bool("pretend", a.pretend).Msg("Invoking action")

	if err := h(a); err != nil {
		return errors.Wrapf(err, errors.ErrActionFailed, "action '%s' failed", name).
			WithDetail("action", name)
	}
	return nil
}

// Close closes every runner opened so far.
func (a *Actor) Close() error {
	var first error
	for key, runner := range a.runners {
		if err := runner.Close(); err != nil && first == nil {
			first = err
		}
		delete(a.runners, key)
	}
	return first
}

// Render expands a command template over the variables.
func (a *Actor) Render(command string) (string, error) {
	return a.render(command, a.pretend)
}

// render expands command; masked renders the password placeholder
// instead of acquiring the credential.
func (a *Actor) render(command string, masked bool) (string, error) {
	tmpl, err := template.New("command").
		Option("missingkey=error").
		Funcs(a.templateFuncs(masked)).
		Parse(command)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "invalid command template %q", command)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, a.vars.Raw()); err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "cannot render command %q", command)
	}
	return b.String(), nil
}

const maskedPassword = "********"

func (a *Actor) templateFuncs(masked bool) template.FuncMap {
	return template.FuncMap{
		"password": func() (string, error) {
			if masked || a.password == nil {
				return maskedPassword, nil
			}
			return a.password.Acquire()
		},
		"quote": transport.ShellEscape,
		"join":  strings.Join,
	}
}

// Run executes an already rendered command on host. In pretend mode it
// only prints it.
func (a *Actor) Run(host transport.Host, command string) error {
	return a.run(host, command, command)
}

// run executes command but prints and logs shown, which has secrets
// masked.
func (a *Actor) run(host transport.Host, command, shown string) error {
	if a.pretend {
		_, _ = fmt.Fprintf(a.stdout, "%s %s %s\n",
			a.palette.Render("Pretend", "[pretend]"),
			a.palette.Render("Host", host.String()),
			a.palette.Render("Command", shown))
		return nil
	}

	_, _ = fmt.Fprintf(a.stdout, "  * %s %s\n",
		a.palette.Render("Host", host.String()),
		a.palette.Render("Command", shown))
	logging.LogCommand(a.logger, host.String(), shown)

	runner, err := a.runner(host)
	if err != nil {
		return err
	}
	return runner.Run(command, a.stdout, a.stderr)
}

func (a *Actor) runner(host transport.Host) (transport.Runner, error) {
	key := host.String()
	if runner, ok := a.runners[key]; ok {
		return runner, nil
	}
	runner, err := a.dialer.Dial(host)
	if err != nil {
		return nil, err
	}
	a.runners[key] = runner
	return runner, nil
}

// Hosts resolves role names to unique hosts, in role order and then host
// order. No role names means every role.
func (a *Actor) Hosts(roleNames []string) ([]transport.Host, error) {
	var roles []Role
	if len(roleNames) == 0 {
		roles = a.roles
	} else {
		for _, name := range roleNames {
			role, ok := a.role(name)
			if !ok {
				return nil, errors.Newf(errors.ErrNotFound, "no role named '%s'", name).
					WithDetail("role", name)
			}
			roles = append(roles, role)
		}
	}

	user := a.defaultUser()
	port := a.vars.Int("port")

	seen := make(map[string]bool)
	var hosts []transport.Host
	for _, role := range roles {
		for _, spec := range role.Hosts {
			host, err := transport.ParseHost(spec, user, port)
			if err != nil {
				return nil, err
			}
			if seen[host.String()] {
				continue
			}
			seen[host.String()] = true
			hosts = append(hosts, host)
		}
	}
	return hosts, nil
}

func (a *Actor) role(name string) (Role, bool) {
	for _, role := range a.roles {
		if role.Name == name {
			return role, true
		}
	}
	return Role{}, false
}

func (a *Actor) defaultUser() string {
	if user := a.vars.String("user"); user != "" {
		return user
	}
	return os.Getenv("USER")
}

// stringList reads a list variable that may also be given as a comma
// separated string, as -s overrides are.
func (a *Actor) stringList(key string) []string {
	if list := a.vars.Strings(key); len(list) > 0 {
		return list
	}
	var out []string
	for _, item := range strings.Split(a.vars.String(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (a *Actor) strictHostKeyChecking() bool {
	if !a.vars.Exists("strict_host_key_checking") {
		return true
	}
	return a.vars.Bool("strict_host_key_checking")
}

// runCommands renders each command and runs it on every host.
func (a *Actor) runCommands(roleNames []string, commands []string, sudo bool) error {
	hosts, err := a.Hosts(roleNames)
	if err != nil {
		return err
	}
	if len(hosts) == 0 {
		if len(roleNames) == 0 {
			return errors.New(errors.ErrNotFound, "no hosts defined")
		}
		return errors.Newf(errors.ErrNotFound, "no hosts for roles %s", strings.Join(roleNames, ", "))
	}

	for _, command := range commands {
		rendered, err := a.Render(command)
		if err != nil {
			return err
		}
		shown, err := a.render(command, true)
		if err != nil {
			return err
		}
		if sudo {
			rendered = "sudo " + rendered
			shown = "sudo " + shown
		}
		for _, host := range hosts {
			if err := a.run(host, rendered, shown); err != nil {
				return err
			}
		}
	}
	return nil
}

func taskHandler(task *recipe.Task) Handler {
	return func(a *Actor) error {
		for _, name := range task.Invoke {
			if err := a.Invoke(name); err != nil {
				return err
			}
		}
		if len(task.Commands) == 0 {
			return nil
		}
		return a.runCommands(task.Roles, task.Commands, task.Sudo)
	}
}
