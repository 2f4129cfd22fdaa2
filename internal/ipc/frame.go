package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Frames on the pipe are single JSON documents terminated by a newline. One
// connection carries exactly one request/response exchange.
const frameDelimiter = '\n'

// readFrame reads one newline-terminated frame, tolerating a missing
// delimiter at EOF. Frames larger than limit are refused before the JSON
// layer ever sees them.
func readFrame(reader *bufio.Reader, limit int) ([]byte, error) {
	raw, err := reader.ReadSlice(frameDelimiter)
	switch {
	case errors.Is(err, bufio.ErrBufferFull):
		return nil, fmt.Errorf("frame exceeds %d bytes", limit)
	case errors.Is(err, io.EOF):
		if len(raw) == 0 {
			return nil, io.EOF
		}
		return raw, nil
	case err != nil:
		return nil, err
	}
	return raw, nil
}

// writeFrame writes payload followed by the frame delimiter.
func writeFrame(w io.Writer, payload []byte) error {
	if _, err := w.Write(payload); err != nil {
		return err
	}
	_, err := w.Write([]byte{frameDelimiter})
	return err
}
