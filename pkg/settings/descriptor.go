package settings

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/huanfeng/androidgen-cli/internal/errors"
)

// Kind selects how a setting value is validated and persisted
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindPassword
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindPassword:
		return "password"
	default:
		return "string"
	}
}

// Descriptor declares one setting key. Descriptors are immutable once registered.
type Descriptor struct {
	Key         string
	Description string
	Default     string
	Kind        Kind
	Pattern     *regexp.Regexp
	PatternHelp string
}

// Validate checks a candidate value against the descriptor
func (d *Descriptor) Validate(value string) error {
	switch d.Kind {
	case KindBool:
		lower := strings.ToLower(value)
		if lower != "true" && lower != "false" {
			return errors.NewConfigurationError("INVALID_VALUE",
				fmt.Sprintf("invalid value '%s' for boolean setting '%s': expected true or false", value, d.Key))
		}
	}
	if d.Pattern != nil && !d.Pattern.MatchString(value) {
		return errors.NewConfigurationError("INVALID_VALUE",
			fmt.Sprintf("invalid value '%s' for setting '%s': %s", value, d.Key, d.PatternHelp))
	}
	return nil
}

var registry = map[string]*Descriptor{}

// Register adds a descriptor to the schema. Registering a key twice is a programming error.
func Register(d Descriptor) *Descriptor {
	if _, exists := registry[d.Key]; exists {
		panic(fmt.Sprintf("setting %q registered twice", d.Key))
	}
	registry[d.Key] = &d
	return &d
}

// Lookup returns the descriptor for key
func Lookup(key string) (*Descriptor, bool) {
	d, ok := registry[key]
	return d, ok
}

// Keys returns every registered key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
