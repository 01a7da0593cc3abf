package config_test

import (
	"testing"

	"github.com/nullshift/vocalops/internal/config"
)

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Server: config.ServerConfig{LogLevel: config.LogLevelInfo},
		Tools: config.ToolsConfig{
			Policies: []config.ToolPolicyConfig{
				{Name: "set_timer", ReadOnly: true},
			},
		},
	}
	d := config.Diff(cfg, cfg)
	if d.ToolPoliciesChanged {
		t.Error("expected ToolPoliciesChanged=false for identical configs")
	}
	if d.LogLevelChanged {
		t.Error("expected LogLevelChanged=false for identical configs")
	}
	if len(d.PolicyChanges) != 0 {
		t.Errorf("expected 0 policy changes, got %d", len(d.PolicyChanges))
	}
}

func TestDiff_LogLevelChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Server: config.ServerConfig{LogLevel: config.LogLevelInfo}}
	new := &config.Config{Server: config.ServerConfig{LogLevel: config.LogLevelDebug}}

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Error("expected LogLevelChanged=true")
	}
	if d.NewLogLevel != config.LogLevelDebug {
		t.Errorf("expected NewLogLevel=debug, got %q", d.NewLogLevel)
	}
}

func TestDiff_PolicyReadOnlyChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Tools: config.ToolsConfig{Policies: []config.ToolPolicyConfig{
		{Name: "set_timer", ReadOnly: false},
	}}}
	new := &config.Config{Tools: config.ToolsConfig{Policies: []config.ToolPolicyConfig{
		{Name: "set_timer", ReadOnly: true},
	}}}

	d := config.Diff(old, new)
	if !d.ToolPoliciesChanged {
		t.Error("expected ToolPoliciesChanged=true")
	}
	if len(d.PolicyChanges) != 1 {
		t.Fatalf("expected 1 policy change, got %d", len(d.PolicyChanges))
	}
	if !d.PolicyChanges[0].ReadOnlyChanged {
		t.Error("expected ReadOnlyChanged=true")
	}
	if d.PolicyChanges[0].ModesChanged {
		t.Error("expected ModesChanged=false")
	}
}

func TestDiff_PolicyModesChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Tools: config.ToolsConfig{Policies: []config.ToolPolicyConfig{
		{Name: "set_timer", AllowedModes: []string{"global"}},
	}}}
	new := &config.Config{Tools: config.ToolsConfig{Policies: []config.ToolPolicyConfig{
		{Name: "set_timer", AllowedModes: []string{"global", "dev"}},
	}}}

	d := config.Diff(old, new)
	if !d.ToolPoliciesChanged {
		t.Error("expected ToolPoliciesChanged=true")
	}
	found := false
	for _, pc := range d.PolicyChanges {
		if pc.Name == "set_timer" && pc.ModesChanged {
			found = true
		}
	}
	if !found {
		t.Error("expected set_timer's ModesChanged=true")
	}
}

func TestDiff_PolicyCooldownChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Tools: config.ToolsConfig{Policies: []config.ToolPolicyConfig{
		{Name: "set_timer", CooldownSeconds: 5},
	}}}
	new := &config.Config{Tools: config.ToolsConfig{Policies: []config.ToolPolicyConfig{
		{Name: "set_timer", CooldownSeconds: 30},
	}}}

	d := config.Diff(old, new)
	if !d.ToolPoliciesChanged {
		t.Error("expected ToolPoliciesChanged=true")
	}
	found := false
	for _, pc := range d.PolicyChanges {
		if pc.Name == "set_timer" && pc.CooldownChanged {
			found = true
		}
	}
	if !found {
		t.Error("expected set_timer's CooldownChanged=true")
	}
}

func TestDiff_PolicyAdded(t *testing.T) {
	t.Parallel()
	old := &config.Config{Tools: config.ToolsConfig{Policies: []config.ToolPolicyConfig{
		{Name: "set_timer"},
	}}}
	new := &config.Config{Tools: config.ToolsConfig{Policies: []config.ToolPolicyConfig{
		{Name: "set_timer"},
		{Name: "send_message"},
	}}}

	d := config.Diff(old, new)
	if !d.ToolPoliciesChanged {
		t.Error("expected ToolPoliciesChanged=true")
	}
	found := false
	for _, pc := range d.PolicyChanges {
		if pc.Name == "send_message" && pc.Added {
			found = true
		}
	}
	if !found {
		t.Error("expected send_message Added=true")
	}
}

func TestDiff_PolicyRemoved(t *testing.T) {
	t.Parallel()
	old := &config.Config{Tools: config.ToolsConfig{Policies: []config.ToolPolicyConfig{
		{Name: "set_timer"},
		{Name: "send_message"},
	}}}
	new := &config.Config{Tools: config.ToolsConfig{Policies: []config.ToolPolicyConfig{
		{Name: "set_timer"},
	}}}

	d := config.Diff(old, new)
	if !d.ToolPoliciesChanged {
		t.Error("expected ToolPoliciesChanged=true")
	}
	found := false
	for _, pc := range d.PolicyChanges {
		if pc.Name == "send_message" && pc.Removed {
			found = true
		}
	}
	if !found {
		t.Error("expected send_message Removed=true")
	}
}

func TestDiff_RouterChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Router: config.RouterConfig{MinConfidence: 0.35}}
	new := &config.Config{Router: config.RouterConfig{MinConfidence: 0.5}}

	d := config.Diff(old, new)
	if !d.RouterChanged {
		t.Error("expected RouterChanged=true")
	}
}

func TestDiff_ContextChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Context: config.ContextConfig{PollHz: 1.0}}
	new := &config.Config{Context: config.ContextConfig{PollHz: 2.0}}

	d := config.Diff(old, new)
	if !d.ContextChanged {
		t.Error("expected ContextChanged=true")
	}
}

func TestDiff_MultipleChanges(t *testing.T) {
	t.Parallel()
	old := &config.Config{
		Server: config.ServerConfig{LogLevel: config.LogLevelInfo},
		Tools: config.ToolsConfig{Policies: []config.ToolPolicyConfig{
			{Name: "A", ReadOnly: false},
			{Name: "B", CooldownSeconds: 1},
		}},
	}
	new := &config.Config{
		Server: config.ServerConfig{LogLevel: config.LogLevelWarn},
		Tools: config.ToolsConfig{Policies: []config.ToolPolicyConfig{
			{Name: "A", ReadOnly: true},
			{Name: "C"},
		}},
	}

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Error("expected LogLevelChanged=true")
	}
	if !d.ToolPoliciesChanged {
		t.Error("expected ToolPoliciesChanged=true")
	}
	changes := make(map[string]config.ToolPolicyDiff)
	for _, pc := range d.PolicyChanges {
		changes[pc.Name] = pc
	}
	if !changes["A"].ReadOnlyChanged {
		t.Error("expected A ReadOnlyChanged=true")
	}
	if !changes["B"].Removed {
		t.Error("expected B Removed=true")
	}
	if !changes["C"].Added {
		t.Error("expected C Added=true")
	}
}
