package recipe

import (
	"sort"

	"github.com/arthur-debert/switchtower/pkg/errors"
)

// Recipe is one decoded recipe source.
type Recipe struct {
	// Source names where the recipe came from: a path, or the name of an
	// embedded recipe.
	Source string `toml:"-" yaml:"-"`

	Variables map[string]interface{} `toml:"variables" yaml:"variables"`
	Roles     map[string][]string    `toml:"roles" yaml:"roles"`
	Tasks     map[string]*Task       `toml:"tasks" yaml:"tasks"`
}

// Task is a named action defined by a recipe.
type Task struct {
	Name        string   `toml:"-" yaml:"-"`
	Description string   `toml:"description" yaml:"description"`
	Roles       []string `toml:"roles" yaml:"roles"`
	Commands    []string `toml:"commands" yaml:"commands"`
	Invoke      []string `toml:"invoke" yaml:"invoke"`
	Sudo        bool     `toml:"sudo" yaml:"sudo"`
}

// TaskNames returns the recipe's task names in sorted order.
func (r *Recipe) TaskNames() []string {
	names := make([]string, 0, len(r.Tasks))
	for name := range r.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalize fills in derived fields and makes nil maps empty.
func (r *Recipe) normalize() {
	if r.Variables == nil {
		r.Variables = map[string]interface{}{}
	}
	if r.Roles == nil {
		r.Roles = map[string][]string{}
	}
	if r.Tasks == nil {
		r.Tasks = map[string]*Task{}
	}
	for name, task := range r.Tasks {
		if task == nil {
			task = &Task{}
			r.Tasks[name] = task
		}
		task.Name = name
	}
}

// Validate checks the structural rules every recipe must follow.
func (r *Recipe) Validate() error {
	for role := range r.Roles {
		if role == "" {
			return errors.Newf(errors.ErrRecipeInvalid, "%s: role name cannot be empty", r.Source)
		}
	}
	for _, name := range r.TaskNames() {
		task := r.Tasks[name]
		if name == "" {
			return errors.Newf(errors.ErrRecipeInvalid, "%s: task name cannot be empty", r.Source)
		}
		if len(task.Commands) == 0 && len(task.Invoke) == 0 {
			return errors.Newf(errors.ErrRecipeInvalid, "%s: task '%s' has neither commands nor invoke", r.Source, name)
		}
		for _, sub := range task.Invoke {
			if sub == name {
				return errors.Newf(errors.ErrRecipeInvalid, "%s: task '%s' invokes itself", r.Source, name)
			}
		}
	}
	return nil
}
