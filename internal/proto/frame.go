package proto

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sysdb/sysdbd/internal/errors"
)

// nbo is the network byte order used throughout the wire protocol.
var nbo = binary.BigEndian

const headerLen = 8

// Frame is a single `{code, length, payload}` protocol message.
type Frame struct {
	Code    Code
	Payload []byte
}

// ReadFrame reads one complete frame from r: an 8-byte header followed
// by exactly Length bytes of payload. r must be in blocking mode — a
// partial read here leaves the stream unrecoverable for the caller,
// same as the reference client library.
func ReadFrame(r io.Reader) (*Frame, error) {
	var header [headerLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	code := Code(nbo.Uint32(header[:4]))
	length := nbo.Uint32(header[4:])

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("reading %d byte payload: %w", length, err)
	}

	return &Frame{Code: code, Payload: payload}, nil
}

// WriteFrame writes f to w as `{code, length, payload}`.
func WriteFrame(w io.Writer, f *Frame) error {
	var header [headerLen]byte
	nbo.PutUint32(header[:4], uint32(f.Code))
	nbo.PutUint32(header[4:], uint32(len(f.Payload)))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if len(f.Payload) > 0 {
		if _, err := w.Write(f.Payload); err != nil {
			return err
		}
	}
	return nil
}

// encodeCstr appends a null-terminated UTF-8 string to buf.
func encodeCstr(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, 0)
}

// decodeCstr reads a null-terminated string starting at buf[0], returning
// the decoded string and the number of bytes consumed (including the
// terminator).
func decodeCstr(buf []byte) (string, int, error) {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i]), i + 1, nil
		}
	}
	return "", 0, errors.WrapWithCode(fmt.Errorf("no null terminator in %d bytes", len(buf)), errors.ErrProtocol, "decoding cstr")
}

func need(buf []byte, n int, what string) error {
	if len(buf) < n {
		return errors.WrapWithCode(fmt.Errorf("need %d bytes, have %d", n, len(buf)), errors.ErrProtocol, "decoding %s", what)
	}
	return nil
}
