// internal/cli/loader_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Recording configuration
// PURPOSE: Verify the order in which the loader drives the configuration

package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/arthur-debert/switchtower/pkg/actor"
	"github.com/arthur-debert/switchtower/pkg/credential"
	"github.com/arthur-debert/switchtower/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingConfiguration records every call made by the loader.
type recordingConfiguration struct {
	calls    []string
	values   map[string]interface{}
	failLoad map[string]error
	actorErr error
}

func newRecordingConfiguration() *recordingConfiguration {
	return &recordingConfiguration{values: map[string]interface{}{}, failLoad: map[string]error{}}
}

func (c *recordingConfiguration) SetLogLevel(verbosity int) {
	c.calls = append(c.calls, fmt.Sprintf("loglevel %d", verbosity))
}

func (c *recordingConfiguration) Set(key string, value interface{}) {
	c.values[key] = value
	if _, ok := value.(credential.Source); ok {
		c.calls = append(c.calls, "set "+key+" <source>")
		return
	}
	c.calls = append(c.calls, fmt.Sprintf("set %s %v", key, value))
}

func (c *recordingConfiguration) Load(name string) error {
	c.calls = append(c.calls, "load "+name)
	return c.failLoad[name]
}

func (c *recordingConfiguration) Actor() (*actor.Actor, error) {
	c.calls = append(c.calls, "actor")
	if c.actorErr != nil {
		return nil, c.actorErr
	}
	return actor.New(actor.Options{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
}

func TestLoad_Order(t *testing.T) {
	opts, prompt, err := parse(t,
		"-v", "-v", "-P",
		"-s", "branch=dev", "-r", "deploy", "-r", "production",
		"-s", "user=ops", "-a", "setup", "-s", "branch=release")
	require.NoError(t, err)

	cfg := newRecordingConfiguration()
	a, err := Load(opts, cfg)
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Equal(t, []string{
		"loglevel 2",
		"set password <source>",
		"set pretend true",
		"load standard",
		"load deploy",
		"load production",
		"set branch release",
		"set user ops",
		"actor",
	}, cfg.calls)

	assert.Same(t, prompt, cfg.values["password"])
	assert.Equal(t, 0, prompt.calls, "loading never acquires the password")
}

func TestLoad_StandardFirstRegardlessOfOrder(t *testing.T) {
	opts, _, err := parse(t, "-r", "standard", "-r", "app", "-a", "x")
	require.NoError(t, err)

	cfg := newRecordingConfiguration()
	_, err = Load(opts, cfg)
	require.NoError(t, err)

	var loads []string
	for _, call := range cfg.calls {
		if len(call) > 5 && call[:5] == "load " {
			loads = append(loads, call[5:])
		}
	}
	assert.Equal(t, []string{"standard", "standard", "app"}, loads)
}

func TestLoad_StandardFailure(t *testing.T) {
	opts, _, err := parse(t, "-r", "deploy", "-a", "x")
	require.NoError(t, err)

	cfg := newRecordingConfiguration()
	cfg.failLoad["standard"] = errors.New(errors.ErrRecipeInvalid, "broken")

	_, err = Load(opts, cfg)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStandardRecipe))
	assert.NotContains(t, cfg.calls, "load deploy")
	assert.NotContains(t, cfg.calls, "actor")
}

func TestLoad_RecipeFailure(t *testing.T) {
	opts, _, err := parse(t, "-r", "one", "-r", "two", "-r", "three", "-a", "x", "-s", "a=1")
	require.NoError(t, err)

	cfg := newRecordingConfiguration()
	cfg.failLoad["two"] = errors.New(errors.ErrRecipeNotFound, "recipe two not found")

	_, err = Load(opts, cfg)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRecipeLoad))
	assert.Contains(t, err.Error(), "two")
	assert.Equal(t, "two", errors.GetErrorDetails(err)["recipe"])

	assert.NotContains(t, cfg.calls, "load three")
	assert.NotContains(t, cfg.calls, "set a 1", "overrides are never applied after a failed load")
}

func TestLoad_ActorFailure(t *testing.T) {
	opts, _, err := parse(t, "-r", "deploy", "-a", "x")
	require.NoError(t, err)

	cfg := newRecordingConfiguration()
	cfg.actorErr = fmt.Errorf("bad roles")

	_, err = Load(opts, cfg)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}
