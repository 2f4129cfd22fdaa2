// Package ipc carries activation requests from a second app launch to the
// running instance over a per-user Named Pipe.
package ipc

import (
	"encoding/json"
	"log/slog"
	"os"
	"os/user"
	"regexp"
	"strings"

	"shortgroup/internal/userutil"
)

var pipeNamePattern = regexp.MustCompile(`(?i)^\\\\\.\\pipe\\shortgroup-[a-z0-9._-]{1,128}$`)

const defaultPipePrefix = `\\.\pipe\shortgroup-`

// Activation actions understood by the running instance.
const (
	// ActionActivateWindow shows and focuses the main window.
	ActionActivateWindow = "activate-window"
	// ActionOpenShortcut launches the shortcut named by ShortcutID.
	ActionOpenShortcut = "open-shortcut"
)

// ActivationRequest is one command from a secondary launch.
type ActivationRequest struct {
	Action     string `json:"action"`
	ShortcutID string `json:"shortcut_id,omitempty"`
}

// ActivationResponse reports whether the running instance handled the request.
type ActivationResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ActivationHandler processes an activation request in the running instance.
type ActivationHandler interface {
	HandleActivation(req ActivationRequest) ActivationResponse
}

// DefaultPipeName returns the pipe path to use. If the SHORTGROUP_PIPE
// environment variable is set and passes pattern validation, its value is
// used; otherwise a per-user default is constructed from the current username.
func DefaultPipeName() string {
	if v, ok := trustedPipeNameFromEnv(); ok {
		return v
	}

	username := strings.TrimSpace(os.Getenv("USERNAME"))
	if username == "" {
		if current, err := user.Current(); err == nil {
			username = current.Username
		}
	}
	return defaultPipePrefix + userutil.SanitizeUsername(username)
}

func trustedPipeNameFromEnv() (string, bool) {
	value := strings.TrimSpace(os.Getenv("SHORTGROUP_PIPE"))
	if value == "" {
		return "", false
	}
	if !pipeNamePattern.MatchString(value) {
		slog.Warn("[ipc] SHORTGROUP_PIPE rejected: value does not match allowed pattern", "value", value)
		return "", false
	}
	return value, true
}

func encodeRequest(req ActivationRequest) ([]byte, error) {
	return json.Marshal(req)
}

func decodeRequest(raw []byte) (ActivationRequest, error) {
	var req ActivationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return ActivationRequest{}, err
	}
	return req, nil
}

func encodeResponse(resp ActivationResponse) ([]byte, error) {
	return json.Marshal(resp)
}

func decodeResponse(raw []byte) (ActivationResponse, error) {
	var resp ActivationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ActivationResponse{}, err
	}
	return resp, nil
}
