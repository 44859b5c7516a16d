package config

import (
	_ "embed"
	"errors"
)

// StandardRecipe names the built-in recipe loaded before any user recipe.
const StandardRecipe = "standard"

//go:embed embedded/defaults.toml
var defaultSettings []byte

//go:embed recipes/standard.toml
var standardRecipe []byte

// StandardRecipeContent returns the embedded standard recipe.
func StandardRecipeContent() string {
	return string(standardRecipe)
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
