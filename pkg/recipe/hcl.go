package recipe

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// hclRecipeFile is the top-level structure of an HCL recipe for decoding.
type hclRecipeFile struct {
	Variables hcl.Expression `hcl:"variables,optional"`
	Roles     []*hclRole     `hcl:"role,block"`
	Tasks     []*hclTask     `hcl:"task,block"`
}

type hclRole struct {
	Name  string   `hcl:"name,label"`
	Hosts []string `hcl:"hosts"`
}

type hclTask struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Roles       []string `hcl:"roles,optional"`
	Commands    []string `hcl:"commands,optional"`
	Invoke      []string `hcl:"invoke,optional"`
	Sudo        bool     `hcl:"sudo,optional"`
}

func decodeHCL(source string, data []byte) (*Recipe, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, source)
	if diags.HasErrors() {
		return nil, diags
	}

	var parsed hclRecipeFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, diags
	}

	r := &Recipe{
		Variables: map[string]interface{}{},
		Roles:     map[string][]string{},
		Tasks:     map[string]*Task{},
	}

	if parsed.Variables != nil {
		value, diags := parsed.Variables.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		if !value.IsNull() {
			if !value.Type().IsObjectType() && !value.Type().IsMapType() {
				return nil, fmt.Errorf("variables must be an object, got %s", value.Type().FriendlyName())
			}
			native, err := ctyToNative(value)
			if err != nil {
				return nil, fmt.Errorf("variables: %w", err)
			}
			if m, ok := native.(map[string]interface{}); ok {
				r.Variables = m
			}
		}
	}

	for _, role := range parsed.Roles {
		if _, dup := r.Roles[role.Name]; dup {
			return nil, fmt.Errorf("role %q is defined more than once", role.Name)
		}
		r.Roles[role.Name] = role.Hosts
	}

	for _, task := range parsed.Tasks {
		if _, dup := r.Tasks[task.Name]; dup {
			return nil, fmt.Errorf("task %q is defined more than once", task.Name)
		}
		r.Tasks[task.Name] = &Task{
			Description: task.Description,
			Roles:       task.Roles,
			Commands:    task.Commands,
			Invoke:      task.Invoke,
			Sudo:        task.Sudo,
		}
	}

	return r, nil
}

// ctyToNative converts a cty.Value into plain Go values: strings, float64,
// bool, []interface{} and map[string]interface{}.
func ctyToNative(v cty.Value) (interface{}, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]interface{}, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]interface{})
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
