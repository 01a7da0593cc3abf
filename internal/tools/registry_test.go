package tools

import (
	"context"
	"testing"

	"github.com/nullshift/vocalops/pkg/types"
)

func noopHandler(context.Context, map[string]types.ArgValue) (any, error) { return nil, nil }

func TestRegistry_PreservesInsertionOrder(t *testing.T) {
	r := NewRegistry()
	names := []string{"charlie", "alpha", "bravo"}
	for _, n := range names {
		if err := r.Register(types.ToolDefinition{Name: n}, types.ToolPolicy{}, noopHandler); err != nil {
			t.Fatalf("Register(%q): %v", n, err)
		}
	}

	got := r.Tools()
	if len(got) != len(names) {
		t.Fatalf("got %d tools, want %d", len(got), len(names))
	}
	for i, n := range names {
		if got[i].Definition().Name != n {
			t.Errorf("position %d = %q, want %q", i, got[i].Definition().Name, n)
		}
	}
}

func TestRegistry_ReplaceKeepsOriginalPosition(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(types.ToolDefinition{Name: "a"}, types.ToolPolicy{}, noopHandler)
	_ = r.Register(types.ToolDefinition{Name: "b"}, types.ToolPolicy{}, noopHandler)
	_ = r.Register(types.ToolDefinition{Name: "a", Description: "updated"}, types.ToolPolicy{}, noopHandler)

	got := r.Tools()
	if len(got) != 2 {
		t.Fatalf("got %d tools, want 2", len(got))
	}
	if got[0].Definition().Name != "a" || got[0].Definition().Description != "updated" {
		t.Errorf("position 0 = %+v, want updated 'a'", got[0].Definition())
	}
}

func TestRegistry_RejectsEmptyNameOrNilHandler(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(types.ToolDefinition{}, types.ToolPolicy{}, noopHandler); err == nil {
		t.Error("expected error for empty name, got nil")
	}
	if err := r.Register(types.ToolDefinition{Name: "x"}, types.ToolPolicy{}, nil); err == nil {
		t.Error("expected error for nil handler, got nil")
	}
}

func TestRegistry_PolicyToolNameIsStamped(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(types.ToolDefinition{Name: "stamped"}, types.ToolPolicy{ReadOnly: true}, noopHandler)
	got := r.Tools()
	if got[0].Policy().ToolName != "stamped" {
		t.Errorf("ToolName = %q, want %q", got[0].Policy().ToolName, "stamped")
	}
}
