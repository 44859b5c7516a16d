package recipe

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/switchtower/pkg/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a recipe encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// Extensions lists the recipe file extensions in lookup order.
var Extensions = []string{".toml", ".yaml", ".yml", ".hcl"}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".hcl":
		return FormatHCL, true
	default:
		return "", false
	}
}

// ParseFile reads and decodes the recipe at path.
func ParseFile(path string) (*Recipe, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, errors.Newf(errors.ErrRecipeInvalid, "%s: unsupported recipe format (want one of %s)",
			path, strings.Join(Extensions, ", "))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrRecipeNotFound, "recipe %s not found", path)
		}
		return nil, errors.Wrapf(err, errors.ErrRecipeLoad, "cannot read recipe %s", path)
	}

	return Decode(path, data, format)
}

// Decode parses data in the given format. source is only used for
// messages and is recorded on the result.
func Decode(source string, data []byte, format Format) (*Recipe, error) {
	var (
		r   *Recipe
		err error
	)

	switch format {
	case FormatTOML:
		r, err = decodeTOML(data)
	case FormatYAML:
		r, err = decodeYAML(data)
	case FormatHCL:
		r, err = decodeHCL(source, data)
	default:
		return nil, errors.Newf(errors.ErrRecipeInvalid, "%s: unknown recipe format %q", source, format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRecipeInvalid, "cannot decode %s recipe %s", format, source)
	}

	r.Source = source
	r.normalize()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func decodeTOML(data []byte) (*Recipe, error) {
	var r Recipe
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

func decodeYAML(data []byte) (*Recipe, error) {
	var r Recipe
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&r); err != nil {
		// An empty document is a valid, empty recipe.
		if err == io.EOF {
			return &Recipe{}, nil
		}
		return nil, err
	}
	return &r, nil
}
