// pkg/testutil/dialer_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Verify the recording dialer and test environment helpers

package testutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/switchtower/pkg/errors"
	"github.com/arthur-debert/switchtower/pkg/testutil"
	"github.com/arthur-debert/switchtower/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingDialer(t *testing.T) {
	d := testutil.NewRecordingDialer("false")

	runner, err := d.Dial(transport.Host{User: "deploy", Name: "app1", Port: 22})
	require.NoError(t, err)

	require.NoError(t, runner.Run("true", nil, nil))
	err = runner.Run("false", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTransport))
	require.NoError(t, runner.Close())

	assert.Equal(t, []string{"deploy@app1:22"}, d.Dials())
	assert.Equal(t, []string{"true", "false"}, d.Commands())
	assert.Equal(t, "deploy@app1:22", d.Executions()[0].Host)
	assert.Equal(t, 1, d.Closed())
}

func TestTestEnvironment(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	assert.Equal(t, env.HomeDir, os.Getenv("HOME"))
	assert.Equal(t, env.ConfigDir, os.Getenv("XDG_CONFIG_HOME"))

	path := env.WriteRecipe("deploy.toml", "[variables]\n")
	assert.Equal(t, filepath.Join(env.RecipeDir, "deploy.toml"), path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[variables]\n", string(content))

	nested := env.WriteFile("a/b/c.txt", "x")
	assert.FileExists(t, nested)
}
