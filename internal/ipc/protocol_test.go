package ipc

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDefaultPipeNameHonorsTrustedEnvOverride(t *testing.T) {
	t.Setenv("SHORTGROUP_PIPE", `\\.\pipe\shortgroup-ci_pipe`)

	if got := DefaultPipeName(); got != `\\.\pipe\shortgroup-ci_pipe` {
		t.Fatalf("DefaultPipeName() = %q, want trusted env override", got)
	}
}

func TestDefaultPipeNameRejectsUntrustedEnvOverride(t *testing.T) {
	t.Setenv("SHORTGROUP_PIPE", `\\.\pipe\other-app`)
	t.Setenv("USERNAME", "unit-tester")

	got := DefaultPipeName()
	if got == `\\.\pipe\other-app` {
		t.Fatalf("DefaultPipeName() unexpectedly accepted untrusted env override")
	}
	if !strings.HasPrefix(got, defaultPipePrefix) {
		t.Fatalf("DefaultPipeName() = %q, want %q prefix", got, defaultPipePrefix)
	}
}

func TestDefaultPipeNameSanitizesUsername(t *testing.T) {
	t.Setenv("SHORTGROUP_PIPE", "")
	t.Setenv("USERNAME", "unit user!")

	got := DefaultPipeName()
	want := `\\.\pipe\shortgroup-unit_user_`
	if got != want {
		t.Fatalf("DefaultPipeName() = %q, want %q", got, want)
	}
}

func TestDefaultPipeNameFallbackWhenUsernameEmpty(t *testing.T) {
	t.Setenv("SHORTGROUP_PIPE", "")
	t.Setenv("USERNAME", "")

	got := DefaultPipeName()

	// When USERNAME is empty, user.Current() may succeed (returning OS user)
	// or fail (falling back to "unknown"). Either way the pipe name must have
	// a non-empty suffix after the prefix.
	if !strings.HasPrefix(got, defaultPipePrefix) {
		t.Fatalf("DefaultPipeName() = %q, want prefix %q", got, defaultPipePrefix)
	}
	suffix := strings.TrimPrefix(got, defaultPipePrefix)
	if suffix == "" {
		t.Fatalf("DefaultPipeName() = %q, suffix after prefix must not be empty", got)
	}
}

func TestDecodeRequestRoundTrip(t *testing.T) {
	input := ActivationRequest{Action: ActionOpenShortcut, ShortcutID: "abc-123"}
	raw, err := json.Marshal(input)
	if err != nil {
		t.Fatalf("json.Marshal error = %v", err)
	}

	req, err := decodeRequest(raw)
	if err != nil {
		t.Fatalf("decodeRequest error = %v", err)
	}
	if req.Action != ActionOpenShortcut || req.ShortcutID != "abc-123" {
		t.Fatalf("decodeRequest = %+v, want %+v", req, input)
	}
}

func TestDecodeRequestRejectsMalformedJSON(t *testing.T) {
	if _, err := decodeRequest([]byte(`{"action":`)); err == nil {
		t.Fatal("decodeRequest expected error for malformed JSON")
	}
}

func TestDecodeResponseRoundTrip(t *testing.T) {
	raw, err := encodeResponse(ActivationResponse{OK: false, Error: "unknown shortcut"})
	if err != nil {
		t.Fatalf("encodeResponse error = %v", err)
	}
	resp, err := decodeResponse(raw)
	if err != nil {
		t.Fatalf("decodeResponse error = %v", err)
	}
	if resp.OK || resp.Error != "unknown shortcut" {
		t.Fatalf("decodeResponse = %+v", resp)
	}
}
