// pkg/actor/actor_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Recording dialer (no network)
// PURPOSE: Verify action registration, task execution, host resolution and pretend mode

package actor_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/arthur-debert/switchtower/pkg/actor"
	"github.com/arthur-debert/switchtower/pkg/errors"
	"github.com/arthur-debert/switchtower/pkg/recipe"
	"github.com/arthur-debert/switchtower/pkg/styles"
	"github.com/arthur-debert/switchtower/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDialer hands out runners that record commands instead of
// running them.
type recordingDialer struct {
	dialed   []string
	commands []string
	closed   int
	fail     map[string]bool
}

func (d *recordingDialer) Dial(host transport.Host) (transport.Runner, error) {
	d.dialed = append(d.dialed, host.String())
	return &recordingRunner{host: host.String(), dialer: d}, nil
}

type recordingRunner struct {
	host   string
	dialer *recordingDialer
}

func (r *recordingRunner) Run(command string, stdout, _ io.Writer) error {
	r.dialer.commands = append(r.dialer.commands, r.host+": "+command)
	if r.dialer.fail[command] {
		return fmt.Errorf("exit status 1")
	}
	_, _ = fmt.Fprintln(stdout, "ok")
	return nil
}

func (r *recordingRunner) Close() error {
	r.dialer.closed++
	return nil
}

type countingSource struct {
	calls int
}

func (s *countingSource) Acquire() (string, error) {
	s.calls++
	return "s3cret", nil
}

func newActor(t *testing.T, opts actor.Options) (*actor.Actor, *recordingDialer, *bytes.Buffer) {
	t.Helper()

	dialer := &recordingDialer{fail: map[string]bool{}}
	var out bytes.Buffer

	if opts.Variables == nil {
		opts.Variables = map[string]interface{}{
			"user":      "deploy",
			"port":      22,
			"deploy_to": "/srv/shop",
		}
	}
	if opts.Roles == nil {
		opts.Roles = []actor.Role{
			{Name: "app", Hosts: []string{"app1", "app2:2222"}},
			{Name: "db", Hosts: []string{"root@db1", "app1"}},
		}
	}
	opts.Dialer = dialer
	opts.Stdout = &out
	opts.Stderr = &out
	opts.Palette = styles.New(&out, styles.ColorNever)

	a, err := actor.New(opts)
	require.NoError(t, err)
	return a, dialer, &out
}

func TestActor_Builtins(t *testing.T) {
	a, _, _ := newActor(t, actor.Options{})

	assert.True(t, a.Has(actor.ActionShowTasks))
	assert.True(t, a.Has(actor.ActionInvoke))
	assert.False(t, a.Has("deploy"))
}

func TestActor_InvokeUnknown(t *testing.T) {
	a, _, _ := newActor(t, actor.Options{})

	err := a.Invoke("nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrActionNotFound))
	assert.Contains(t, err.Error(), "nope")
}

func TestActor_TaskRunsCommandsOnRoleHosts(t *testing.T) {
	a, dialer, _ := newActor(t, actor.Options{
		Tasks: map[string]*recipe.Task{
			"restart": {
				Name:     "restart",
				Roles:    []string{"app"},
				Commands: []string{"touch {{ .deploy_to }}/restart.txt", "echo done"},
			},
		},
	})

	require.NoError(t, a.Invoke("restart"))
	assert.Equal(t, []string{
		"deploy@app1:22: touch /srv/shop/restart.txt",
		"deploy@app2:2222: touch /srv/shop/restart.txt",
		"deploy@app1:22: echo done",
		"deploy@app2:2222: echo done",
	}, dialer.commands)

	// one runner per host, reused across commands
	assert.Equal(t, []string{"deploy@app1:22", "deploy@app2:2222"}, dialer.dialed)

	require.NoError(t, a.Close())
	assert.Equal(t, 2, dialer.closed)
}

func TestActor_AllRolesAreUniqueAndOrdered(t *testing.T) {
	a, _, _ := newActor(t, actor.Options{})

	hosts, err := a.Hosts(nil)
	require.NoError(t, err)

	var got []string
	for _, h := range hosts {
		got = append(got, h.String())
	}
	assert.Equal(t, []string{"deploy@app1:22", "deploy@app2:2222", "root@db1:22"}, got)

	_, err = a.Hosts([]string{"web"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestActor_InvokeListRunsFirst(t *testing.T) {
	a, dialer, _ := newActor(t, actor.Options{
		Tasks: map[string]*recipe.Task{
			"update_code": {Name: "update_code", Roles: []string{"db"}, Commands: []string{"git pull"}},
			"migrate":     {Name: "migrate", Roles: []string{"db"}, Commands: []string{"migrate up"}},
			"deploy":      {Name: "deploy", Invoke: []string{"update_code", "migrate"}, Roles: []string{"db"}, Commands: []string{"echo deployed"}},
		},
		Roles: []actor.Role{{Name: "db", Hosts: []string{"db1"}}},
	})

	require.NoError(t, a.Invoke("deploy"))
	assert.Equal(t, []string{
		"deploy@db1:22: git pull",
		"deploy@db1:22: migrate up",
		"deploy@db1:22: echo deployed",
	}, dialer.commands)
}

func TestActor_FailureStopsTask(t *testing.T) {
	a, dialer, _ := newActor(t, actor.Options{
		Tasks: map[string]*recipe.Task{
			"update_code": {Name: "update_code", Commands: []string{"git pull"}},
			"deploy":      {Name: "deploy", Invoke: []string{"update_code"}, Commands: []string{"echo deployed"}},
		},
		Roles: []actor.Role{{Name: "app", Hosts: []string{"app1", "app2"}}},
	})
	dialer.fail["git pull"] = true

	err := a.Invoke("deploy")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrActionFailed))
	assert.Contains(t, errors.Describe(err), "action 'deploy' failed: action 'update_code' failed")
	assert.Equal(t, []string{"deploy@app1:22: git pull"}, dialer.commands)
}

func TestActor_InvokeCycle(t *testing.T) {
	a, _, _ := newActor(t, actor.Options{
		Tasks: map[string]*recipe.Task{
			"a": {Name: "a", Invoke: []string{"b"}},
			"b": {Name: "b", Invoke: []string{"a"}},
		},
	})

	err := a.Invoke("a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invokes itself")
}

func TestActor_Sudo(t *testing.T) {
	a, dialer, _ := newActor(t, actor.Options{
		Tasks: map[string]*recipe.Task{
			"restart": {Name: "restart", Roles: []string{"db"}, Commands: []string{"systemctl restart shop"}, Sudo: true},
		},
		Roles: []actor.Role{{Name: "db", Hosts: []string{"db1"}}},
	})

	require.NoError(t, a.Invoke("restart"))
	assert.Equal(t, []string{"deploy@db1:22: sudo systemctl restart shop"}, dialer.commands)
}

func TestActor_NoHosts(t *testing.T) {
	a, _, _ := newActor(t, actor.Options{
		Tasks: map[string]*recipe.Task{
			"restart": {Name: "restart", Commands: []string{"true"}},
		},
		Roles: []actor.Role{},
	})

	err := a.Invoke("restart")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrActionFailed))
	assert.Contains(t, err.Error(), "no hosts")
}

func TestActor_RecipeTaskReplacesBuiltin(t *testing.T) {
	a, dialer, _ := newActor(t, actor.Options{
		Tasks: map[string]*recipe.Task{
			"show_tasks": {Name: "show_tasks", Description: "custom", Roles: []string{"db"}, Commands: []string{"ls"}},
		},
		Roles: []actor.Role{{Name: "db", Hosts: []string{"db1"}}},
	})

	assert.Equal(t, "custom", a.Description("show_tasks"))
	require.NoError(t, a.Invoke("show_tasks"))
	assert.Equal(t, []string{"deploy@db1:22: ls"}, dialer.commands)
}

func TestActor_PasswordAcquiredLazilyOnce(t *testing.T) {
	src := &countingSource{}
	a, dialer, out := newActor(t, actor.Options{
		Password: src,
		Tasks: map[string]*recipe.Task{
			"plain":  {Name: "plain", Roles: []string{"db"}, Commands: []string{"uptime"}},
			"secret": {Name: "secret", Roles: []string{"db"}, Commands: []string{"echo {{ password }}", "echo {{ password }} again"}},
		},
		Roles: []actor.Role{{Name: "db", Hosts: []string{"db1"}}},
	})

	require.NoError(t, a.Invoke("plain"))
	assert.Equal(t, 0, src.calls, "tasks that don't need the password never acquire it")

	require.NoError(t, a.Invoke("secret"))
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, []string{
		"deploy@db1:22: uptime",
		"deploy@db1:22: echo s3cret",
		"deploy@db1:22: echo s3cret again",
	}, dialer.commands)
	assert.NotContains(t, out.String(), "s3cret", "printed commands mask the password")
	assert.Contains(t, out.String(), "echo ******** again")
}

func TestActor_Pretend(t *testing.T) {
	src := &countingSource{}
	a, dialer, out := newActor(t, actor.Options{
		Pretend:  true,
		Password: src,
		Tasks: map[string]*recipe.Task{
			"secret": {Name: "secret", Roles: []string{"db"}, Commands: []string{"echo {{ password }} > {{ .deploy_to }}/pw"}},
		},
		Roles: []actor.Role{{Name: "db", Hosts: []string{"db1"}}},
	})

	assert.True(t, a.Pretend())
	require.NoError(t, a.Invoke("secret"))

	assert.Empty(t, dialer.dialed, "pretend never opens a connection")
	assert.Empty(t, dialer.commands)
	assert.Equal(t, 0, src.calls, "pretend never acquires the credential")
	assert.Equal(t, "[pretend] deploy@db1:22 echo ******** > /srv/shop/pw\n", out.String())
}

func TestActor_RenderErrors(t *testing.T) {
	a, _, _ := newActor(t, actor.Options{})

	rendered, err := a.Render("cd {{ .deploy_to }} && ls {{ quote \"it's\" }}")
	require.NoError(t, err)
	assert.Equal(t, `cd /srv/shop && ls 'it'"'"'s'`, rendered)

	_, err = a.Render("{{ .missing }}")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = a.Render("{{ unclosed")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestActor_InvokeBuiltin(t *testing.T) {
	t.Run("runs_command_on_selected_roles", func(t *testing.T) {
		a, dialer, _ := newActor(t, actor.Options{
			Variables: map[string]interface{}{"user": "ops", "command": "df -h", "roles": "db", "sudo": "true"},
		})
		require.NoError(t, a.Invoke(actor.ActionInvoke))
		assert.Equal(t, []string{"root@db1:22: sudo df -h", "ops@app1:22: sudo df -h"}, dialer.commands)
	})

	t.Run("requires_command", func(t *testing.T) {
		a, _, _ := newActor(t, actor.Options{})
		err := a.Invoke(actor.ActionInvoke)
		require.Error(t, err)
		assert.Contains(t, errors.Describe(err), "set the command")
	})
}

func TestActor_ShowTasks(t *testing.T) {
	a, _, out := newActor(t, actor.Options{
		Tasks: map[string]*recipe.Task{
			"deploy": {Name: "deploy", Description: "Deploy the app", Invoke: []string{"invoke"}},
		},
	})

	require.NoError(t, a.Invoke(actor.ActionShowTasks))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Available actions", lines[0])
	assert.Equal(t, "  deploy      Deploy the app", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "  invoke "))
	assert.True(t, strings.HasPrefix(lines[3], "  show_tasks "))
}

func TestActor_Var(t *testing.T) {
	a, _, _ := newActor(t, actor.Options{
		Variables: map[string]interface{}{"scm": map[string]interface{}{"branch": "main"}},
	})
	assert.Equal(t, "main", a.Var("scm.branch"))
	assert.Nil(t, a.Var("missing"))
}
