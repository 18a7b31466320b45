package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxLineBytes bounds a single request line.
const DefaultMaxLineBytes = 64 * 1024

var (
	// ErrLineTooLong is returned for a line longer than the reader limit.
	// The oversized line is consumed, so the stream stays usable.
	ErrLineTooLong = errors.New("line too long")
	// ErrMalformed wraps JSON decoding failures.
	ErrMalformed = errors.New("malformed JSON")
)

// LineReader splits a stream into newline-terminated lines.
// Not safe for concurrent use.
type LineReader struct {
	br  *bufio.Reader
	max int
	buf []byte
}

// NewLineReader wraps r. maxBytes <= 0 selects DefaultMaxLineBytes.
func NewLineReader(r io.Reader, maxBytes int) *LineReader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxLineBytes
	}
	return &LineReader{
		br:  bufio.NewReaderSize(r, 4096),
		max: maxBytes,
		buf: make([]byte, 0, 512),
	}
}

// ReadLine returns the next line without its terminator. The returned
// slice is only valid until the next call. A final unterminated line is
// returned before io.EOF.
func (lr *LineReader) ReadLine() ([]byte, error) {
	lr.buf = lr.buf[:0]
	overflow := false

	for {
		chunk, err := lr.br.ReadSlice('\n')
		if !overflow {
			if len(lr.buf)+len(chunk) > lr.max+1 {
				overflow = true
			} else {
				lr.buf = append(lr.buf, chunk...)
			}
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(lr.buf) > 0 && !overflow {
				return bytes.TrimRight(lr.buf, "\r\n"), nil
			}
			return nil, err
		}
		break
	}

	if overflow {
		return nil, ErrLineTooLong
	}
	return bytes.TrimRight(lr.buf, "\r\n"), nil
}

// DecodeRequest parses one request line. Numbers in arguments decode as
// json.Number.
func DecodeRequest(line []byte) (Request, error) {
	var req Request
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if dec.More() {
		return Request{}, fmt.Errorf("%w: trailing data after object", ErrMalformed)
	}
	return req, nil
}

// DecodeResponse parses one response line.
func DecodeResponse(line []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return resp, nil
}

// WriteJSON writes v as one line with a single Write call.
func WriteJSON(w io.Writer, v any) error {
	buf := lines.Get()
	defer lines.Put(buf)

	// Encode terminates the value with '\n'
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}
