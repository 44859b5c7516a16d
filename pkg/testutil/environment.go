// pkg/testutil/environment.go
// DEPENDENCIES: None (base test utilities)
// PURPOSE: Isolated directories and recipe files for tests

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestEnvironment is a temporary directory tree with HOME and the XDG
// config directory pointed into it.
type TestEnvironment struct {
	Root      string
	HomeDir   string
	ConfigDir string
	RecipeDir string

	t *testing.T
}

// NewTestEnvironment creates the tree and sets HOME, USER and
// XDG_CONFIG_HOME for the duration of the test.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	env := &TestEnvironment{
		Root:      root,
		HomeDir:   filepath.Join(root, "home"),
		ConfigDir: filepath.Join(root, "home", ".config"),
		RecipeDir: filepath.Join(root, "recipes"),
		t:         t,
	}

	for _, dir := range []string{env.HomeDir, env.ConfigDir, env.RecipeDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("USER", "tester")
	t.Setenv("XDG_CONFIG_HOME", env.ConfigDir)

	return env
}

// WriteRecipe writes content to name under RecipeDir and returns the full
// path.
func (env *TestEnvironment) WriteRecipe(name, content string) string {
	env.t.Helper()
	return env.WriteFile(filepath.Join(env.RecipeDir, name), content)
}

// WriteFile writes content to path, creating parent directories. A
// relative path is taken from Root.
func (env *TestEnvironment) WriteFile(path, content string) string {
	env.t.Helper()

	if !filepath.IsAbs(path) {
		path = filepath.Join(env.Root, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		env.t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		env.t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}
