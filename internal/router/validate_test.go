package router

import (
	"testing"

	"github.com/nullshift/vocalops/pkg/types"
)

func TestValidateArgs_RequiredFieldMissing(t *testing.T) {
	schema := map[string]any{"required": []any{"path"}}
	err := validateArgs(schema, map[string]types.ArgValue{})
	if err == nil {
		t.Fatal("expected error for missing required argument")
	}
}

func TestValidateArgs_RequiredFieldPresent(t *testing.T) {
	schema := map[string]any{"required": []any{"path"}}
	args := map[string]types.ArgValue{"path": {Kind: types.ArgString, Str: "/tmp/x"}}
	if err := validateArgs(schema, args); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateArgs_TypeMismatchRejected(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"count": map[string]any{"type": "integer"},
		},
	}
	args := map[string]types.ArgValue{"count": {Kind: types.ArgString, Str: "three"}}
	if err := validateArgs(schema, args); err == nil {
		t.Fatal("expected type mismatch error")
	}
}

func TestValidateArgs_NumberAcceptsIntOrFloat(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"ratio": map[string]any{"type": "number"},
		},
	}
	for _, v := range []types.ArgValue{{Kind: types.ArgInt, Int: 1}, {Kind: types.ArgFloat, Float: 1.5}} {
		if err := validateArgs(schema, map[string]types.ArgValue{"ratio": v}); err != nil {
			t.Errorf("expected number schema to accept kind %v, got %v", v.Kind, err)
		}
	}
}

func TestValidateArgs_UnknownPropertyIgnored(t *testing.T) {
	schema := map[string]any{"properties": map[string]any{}}
	args := map[string]types.ArgValue{"extra": {Kind: types.ArgBool, Bool: true}}
	if err := validateArgs(schema, args); err != nil {
		t.Fatalf("unexpected error for unknown property: %v", err)
	}
}
