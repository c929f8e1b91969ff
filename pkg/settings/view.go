package settings

import (
	"fmt"
	"strings"

	"github.com/huanfeng/androidgen-cli/internal/errors"
)

// Scope names where an effective value came from
type Scope string

const (
	ScopeProject Scope = "project"
	ScopeGlobal  Scope = "global"
	ScopeDefault Scope = "default"
)

// Entry is one effective binding, as shown by android-register --list
type Entry struct {
	Key         string `json:"key" yaml:"key"`
	Value       string `json:"value" yaml:"value"`
	Scope       Scope  `json:"scope" yaml:"scope"`
	Kind        string `json:"kind" yaml:"kind"`
	Description string `json:"description" yaml:"description"`
}

// View overlays a project-local store on the global store. Project values shadow global ones
// per key; unset keys fall back to the descriptor default.
type View struct {
	global  *Store
	project *Store
}

// Open builds the view for a command invocation. projectDir may be empty, in which case only
// the global scope is available.
func Open(globalDir, projectDir string) (*View, error) {
	global, err := OpenStore(globalDir)
	if err != nil {
		return nil, err
	}
	v := &View{global: global}
	if projectDir != "" {
		project, err := OpenStore(projectDir)
		if err != nil {
			return nil, err
		}
		v.project = project
	}
	return v, nil
}

func descriptorFor(key string) (*Descriptor, error) {
	d, ok := Lookup(key)
	if !ok {
		return nil, errors.NewConfigurationError("UNKNOWN_SETTING",
			fmt.Sprintf("unknown setting '%s'", key))
	}
	return d, nil
}

// Get returns the effective value for key. Unknown keys yield the empty string.
func (v *View) Get(key string) string {
	value, _ := v.lookup(key)
	return value
}

func (v *View) lookup(key string) (string, Scope) {
	d, ok := Lookup(key)
	if !ok {
		return "", ScopeDefault
	}
	if v.project != nil {
		if raw, ok := v.project.Get(key); ok {
			return decode(d, raw), ScopeProject
		}
	}
	if raw, ok := v.global.Get(key); ok {
		return decode(d, raw), ScopeGlobal
	}
	return d.Default, ScopeDefault
}

// Bool interprets a boolean setting. Anything other than a case-insensitive "true" is false.
func (v *View) Bool(key string) bool {
	return strings.EqualFold(v.Get(key), "true")
}

// Validate checks value against the descriptor registered for key
func (v *View) Validate(key, value string) error {
	d, err := descriptorFor(key)
	if err != nil {
		return err
	}
	return d.Validate(value)
}

// Set validates and persists a value at the chosen scope
func (v *View) Set(key, value string, projectScoped bool) error {
	d, err := descriptorFor(key)
	if err != nil {
		return err
	}
	if err := d.Validate(value); err != nil {
		return err
	}
	if d.Kind == KindBool {
		value = strings.ToLower(value)
	}

	store, err := v.storeFor(projectScoped)
	if err != nil {
		return err
	}
	return store.Set(key, encode(d, value))
}

// Clear removes a value from the chosen scope
func (v *View) Clear(key string, projectScoped bool) error {
	if _, err := descriptorFor(key); err != nil {
		return err
	}
	store, err := v.storeFor(projectScoped)
	if err != nil {
		return err
	}
	return store.Delete(key)
}

func (v *View) storeFor(projectScoped bool) (*Store, error) {
	if !projectScoped {
		return v.global, nil
	}
	if v.project == nil {
		return nil, errors.NewConfigurationError("NO_PROJECT",
			"a project path is required to store a project-scoped setting")
	}
	return v.project, nil
}

// Keys returns every registered key, sorted
func (v *View) Keys() []string {
	return Keys()
}

// Entries returns the effective binding of every registered key. Password values are masked.
func (v *View) Entries() []Entry {
	var out []Entry
	for _, key := range Keys() {
		d, _ := Lookup(key)
		value, scope := v.lookup(key)
		if d.Kind == KindPassword && value != "" {
			value = "********"
		}
		out = append(out, Entry{
			Key:         key,
			Value:       value,
			Scope:       scope,
			Kind:        d.Kind.String(),
			Description: d.Description,
		})
	}
	return out
}

func encode(d *Descriptor, value string) string {
	if d.Kind == KindPassword {
		return obfuscate(value)
	}
	return value
}

func decode(d *Descriptor, raw string) string {
	if d.Kind == KindPassword {
		return deobfuscate(raw)
	}
	return raw
}
