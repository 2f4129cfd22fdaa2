package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Microsoft/go-winio"
)

const (
	pipeDialTimeout      = 3 * time.Second
	pipeExchangeTimeout  = 15 * time.Second
	maxPipeResponseBytes = 16 * 1024
)

// Send delivers one activation request to the running instance and returns
// its response. An empty pipeName targets the default per-user pipe.
func Send(pipeName string, req ActivationRequest) (ActivationResponse, error) {
	if pipeName == "" {
		pipeName = DefaultPipeName()
	}

	payload, err := encodeRequest(req)
	if err != nil {
		return ActivationResponse{}, err
	}

	dialTimeout := pipeDialTimeout
	conn, err := winio.DialPipe(pipeName, &dialTimeout)
	if err != nil {
		return ActivationResponse{}, err
	}
	defer conn.Close()

	// One deadline covers the whole exchange; a stuck server must not hang a
	// secondary launch.
	if err := conn.SetDeadline(time.Now().Add(pipeExchangeTimeout)); err != nil {
		return ActivationResponse{}, fmt.Errorf("set deadline: %w", err)
	}

	if err := writeFrame(conn, payload); err != nil {
		return ActivationResponse{}, err
	}

	raw, err := readFrame(bufio.NewReaderSize(conn, maxPipeResponseBytes+1), maxPipeResponseBytes)
	if err != nil {
		return ActivationResponse{}, err
	}
	resp, err := decodeResponse(raw)
	if err != nil {
		return ActivationResponse{}, fmt.Errorf("invalid response: %w", err)
	}
	return resp, nil
}

// IsConnectionError reports whether err means no server is listening on the
// pipe, as opposed to a failure talking to a live one.
func IsConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial" || opErr.Op == "open"
	}
	return false
}
