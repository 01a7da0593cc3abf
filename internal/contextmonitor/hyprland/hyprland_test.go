package hyprland

import (
	"context"
	"errors"
	"testing"
)

func TestPoller_ParsesActiveWindow(t *testing.T) {
	p := &Poller{run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte(`{"address":"0x1","class":"code","title":"main.go - vocalops"}`), nil
	}}

	raw, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if raw.ActiveAppID != "code" {
		t.Errorf("ActiveAppID = %q, want %q", raw.ActiveAppID, "code")
	}
	if raw.ActiveAppName != "main.go - vocalops" {
		t.Errorf("ActiveAppName = %q, want %q", raw.ActiveAppName, "main.go - vocalops")
	}
	if raw.MicActive || len(raw.MicHolders) != 0 {
		t.Errorf("expected no mic info from hyprland poller, got %+v", raw)
	}
}

func TestPoller_EmptyDesktopIsNotAnError(t *testing.T) {
	p := &Poller{run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("null\n"), nil
	}}

	raw, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if raw.ActiveAppID != "" {
		t.Errorf("expected empty ActiveAppID on idle desktop, got %q", raw.ActiveAppID)
	}
}

func TestPoller_RunnerErrorPropagates(t *testing.T) {
	want := errors.New("hyprctl not found")
	p := &Poller{run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, want
	}}

	_, err := p.Poll(context.Background())
	if !errors.Is(err, want) {
		t.Errorf("expected underlying runner error to propagate, got %v", err)
	}
}

func TestPoller_MalformedJSONReturnsError(t *testing.T) {
	p := &Poller{run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte(`{not json`), nil
	}}

	_, err := p.Poll(context.Background())
	if err == nil {
		t.Fatal("expected decode error for malformed json")
	}
}
