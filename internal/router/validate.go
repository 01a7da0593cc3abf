package router

import (
	"fmt"

	"github.com/nullshift/vocalops/pkg/types"
)

// validateArgs checks a proposal's arguments against a tool's JSON-Schema-
// shaped Parameters map (spec §4.8 step 5, §4.9). It does not implement
// general JSON Schema — the pack has no grounded example of driving
// google/jsonschema-go's validator API, and ArgValue is a five-kind tagged
// union rather than arbitrary JSON, so only the two checks that matter for
// that union are applied: every name listed under "required" is present,
// and each property's declared "type" is compatible with the supplied
// ArgValue's Kind. Unknown or additional properties are accepted.
func validateArgs(schema map[string]any, args map[string]types.ArgValue) error {
	for _, name := range requiredNames(schema) {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("router: missing required argument %q", name)
		}
	}

	props, _ := schema["properties"].(map[string]any)
	for name, val := range args {
		propAny, ok := props[name]
		if !ok {
			continue
		}
		prop, ok := propAny.(map[string]any)
		if !ok {
			continue
		}
		declared, ok := prop["type"].(string)
		if !ok {
			continue
		}
		if !kindMatchesSchemaType(val.Kind, declared) {
			return fmt.Errorf("router: argument %q: schema type %q does not accept value kind %v", name, declared, val.Kind)
		}
	}
	return nil
}

func requiredNames(schema map[string]any) []string {
	raw, ok := schema["required"].([]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			names = append(names, s)
		}
	}
	return names
}

func kindMatchesSchemaType(kind types.ArgKind, schemaType string) bool {
	switch schemaType {
	case "string":
		return kind == types.ArgString
	case "integer":
		return kind == types.ArgInt
	case "number":
		return kind == types.ArgInt || kind == types.ArgFloat
	case "boolean":
		return kind == types.ArgBool
	case "array":
		return kind == types.ArgStringList
	default:
		return true
	}
}
