package config

import "slices"

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	ToolPoliciesChanged bool
	PolicyChanges       []ToolPolicyDiff

	RouterChanged  bool
	ContextChanged bool
}

// ToolPolicyDiff describes what changed for a single tool policy between two configs.
type ToolPolicyDiff struct {
	Name              string
	ReadOnlyChanged   bool
	AlwaysAskChanged  bool
	ModesChanged      bool
	CooldownChanged   bool
	Added             bool
	Removed           bool
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	oldPolicies := make(map[string]*ToolPolicyConfig, len(old.Tools.Policies))
	for i := range old.Tools.Policies {
		oldPolicies[old.Tools.Policies[i].Name] = &old.Tools.Policies[i]
	}
	newPolicies := make(map[string]*ToolPolicyConfig, len(new.Tools.Policies))
	for i := range new.Tools.Policies {
		newPolicies[new.Tools.Policies[i].Name] = &new.Tools.Policies[i]
	}

	for name, oldP := range oldPolicies {
		newP, exists := newPolicies[name]
		if !exists {
			d.PolicyChanges = append(d.PolicyChanges, ToolPolicyDiff{Name: name, Removed: true})
			d.ToolPoliciesChanged = true
			continue
		}
		pd := diffToolPolicy(name, oldP, newP)
		if pd.ReadOnlyChanged || pd.AlwaysAskChanged || pd.ModesChanged || pd.CooldownChanged {
			d.PolicyChanges = append(d.PolicyChanges, pd)
			d.ToolPoliciesChanged = true
		}
	}
	for name := range newPolicies {
		if _, exists := oldPolicies[name]; !exists {
			d.PolicyChanges = append(d.PolicyChanges, ToolPolicyDiff{Name: name, Added: true})
			d.ToolPoliciesChanged = true
		}
	}

	if !routerEqual(old.Router, new.Router) {
		d.RouterChanged = true
	}

	if !contextEqual(old.Context, new.Context) {
		d.ContextChanged = true
	}

	return d
}

// diffToolPolicy compares two tool policy configs with the same name.
func diffToolPolicy(name string, old, new *ToolPolicyConfig) ToolPolicyDiff {
	pd := ToolPolicyDiff{Name: name}
	if old.ReadOnly != new.ReadOnly {
		pd.ReadOnlyChanged = true
	}
	if old.AlwaysAsk != new.AlwaysAsk {
		pd.AlwaysAskChanged = true
	}
	if !slices.Equal(old.AllowedModes, new.AllowedModes) {
		pd.ModesChanged = true
	}
	if old.CooldownSeconds != new.CooldownSeconds {
		pd.CooldownChanged = true
	}
	return pd
}

func routerEqual(old, new RouterConfig) bool {
	return old.DebounceMs == new.DebounceMs &&
		old.MinConfidence == new.MinConfidence &&
		old.AutoRunEnabled == new.AutoRunEnabled &&
		old.ToolTimeoutSeconds == new.ToolTimeoutSeconds &&
		slices.Equal(old.Manifest, new.Manifest)
}

func contextEqual(old, new ContextConfig) bool {
	return old.PollHz == new.PollHz &&
		old.PinnedMode == new.PinnedMode &&
		slices.Equal(old.MeetingApps, new.MeetingApps) &&
		slices.Equal(old.DevApps, new.DevApps) &&
		slices.Equal(old.WriterApps, new.WriterApps)
}
