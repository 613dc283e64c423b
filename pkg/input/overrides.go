package input

import (
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/grovetools/sheetsync/config"
)

// ApplyOverrides replaces bindings in a keymap struct with keys from config.
// Config keys are snake_case field names (save_as -> SaveAs); only key.Binding
// fields are considered and embedded structs are walked. The help text of the
// replaced binding is kept. It returns the override keys that matched no field
// or named an unparseable key, sorted.
func ApplyOverrides(km interface{}, overrides config.KeybindingSectionConfig) []string {
	if overrides == nil {
		return nil
	}

	v := reflect.ValueOf(km)
	if v.Kind() != reflect.Ptr {
		return nil
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return nil
	}

	used := make(map[string]bool)
	applyOverridesRecursive(v, overrides, used)

	var rejected []string
	for action := range overrides {
		if !used[action] {
			rejected = append(rejected, action)
		}
	}
	sort.Strings(rejected)
	return rejected
}

func applyOverridesRecursive(v reflect.Value, overrides config.KeybindingSectionConfig, used map[string]bool) {
	t := v.Type()
	bindingType := reflect.TypeOf(key.Binding{})

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		// Exported fields of an unexported embedded struct are still settable.
		if fieldType.Anonymous && field.Kind() == reflect.Struct {
			applyOverridesRecursive(field, overrides, used)
			continue
		}

		if !field.CanSet() {
			continue
		}

		if fieldType.Type != bindingType {
			continue
		}

		configKey := camelToSnake(fieldType.Name)
		keys, ok := overrides[configKey]
		if !ok || len(keys) == 0 {
			continue
		}

		for _, k := range keys {
			if _, err := ParseKey(k); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		current := field.Interface().(key.Binding)
		field.Set(reflect.ValueOf(key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(keys[0], current.Help().Desc),
		)))
		used[configKey] = true
	}
}

// camelToSnake converts a CamelCase string to snake_case.
// Examples: SaveAs -> save_as, BrowseToStart -> browse_to_start
func camelToSnake(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				result.WriteRune('_')
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
