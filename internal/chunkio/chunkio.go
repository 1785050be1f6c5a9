// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

// Package chunkio provides an in-memory buffer for compiled chunks that
// implements [io.ReadWriteSeeker], plus helpers for telling precompiled
// chunks apart from source text.
package chunkio

import (
	"bufio"
	"errors"
	"io"
	"math"
	"strings"
)

// Signature is the prefix that marks a precompiled chunk.
// It begins with an escape character, which is not legal at the start of
// source text, so testing the first byte suffices.
const Signature = "\x1bLua"

// IsBinary reports whether prefix begins a precompiled chunk.
func IsBinary(prefix []byte) bool {
	return len(prefix) > 0 && prefix[0] == Signature[0]
}

// Mode returns the load mode string for a chunk starting with prefix:
// "b" for a precompiled chunk and "t" for source text.
func Mode(prefix []byte) string {
	if IsBinary(prefix) {
		return "b"
	}
	return "t"
}

// SourceName builds a chunk name for error messages and debug information
// following the VM's prefix conventions: "@" for file contents and "=" for
// other descriptions.
func SourceName(path string) string {
	if path == "" || path == "-" {
		return "=stdin"
	}
	return "@" + path
}

// A Reader wraps an io.Reader and determines the chunk's load mode from its
// first byte without consuming it.
type Reader struct {
	br   *bufio.Reader
	mode string
}

// NewReader returns a [Reader] for r.
// The mode is determined lazily on the first call to [Reader.Mode] or
// [Reader.Read].
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Mode returns the load mode ("b" or "t") for the wrapped chunk.
// An empty chunk is reported as text.
func (r *Reader) Mode() (string, error) {
	if r.mode == "" {
		prefix, err := r.br.Peek(1)
		if err != nil && err != io.EOF {
			return "", err
		}
		r.mode = Mode(prefix)
	}
	return r.mode, nil
}

// Read implements the [io.Reader] interface.
func (r *Reader) Read(p []byte) (int, error) {
	if r.mode == "" {
		if _, err := r.Mode(); err != nil {
			return 0, err
		}
	}
	return r.br.Read(p)
}

// Buffer accumulates a compiled chunk in memory.
// It implements [io.Reader], [io.Writer], [io.Seeker], and [io.WriterTo]
// over a byte slice, so a dumped chunk can be rewound and handed straight
// back to a loader.
// The zero value is an empty buffer with no size limit.
type Buffer struct {
	s     []byte
	i     int64
	limit int
}

// New returns a new [Buffer] reading from and writing to p.
func New(p []byte) *Buffer {
	return &Buffer{s: p, limit: math.MaxInt}
}

// Reset resets the [Buffer] to be reading from and writing to p.
func (b *Buffer) Reset(p []byte) {
	*b = Buffer{s: p, limit: math.MaxInt}
}

// SetLimit caps the buffer's size at limit bytes.
// A non-positive limit removes the cap.
func (b *Buffer) SetLimit(limit int) {
	if limit <= 0 {
		limit = math.MaxInt
	}
	b.limit = limit
}

// Size returns the length of the underlying byte slice.
func (b *Buffer) Size() int64 {
	return int64(len(b.s))
}

// Bytes returns the underlying byte slice.
// The slice is valid only until the next mutating call.
func (b *Buffer) Bytes() []byte {
	return b.s
}

// IsBinary reports whether the buffered chunk is precompiled.
func (b *Buffer) IsBinary() bool {
	return IsBinary(b.s)
}

// Read implements the [io.Reader] interface.
func (b *Buffer) Read(p []byte) (n int, err error) {
	if b.i >= int64(len(b.s)) {
		return 0, io.EOF
	}
	n = copy(p, b.s[b.i:])
	b.i += int64(n)
	return n, nil
}

// Write implements the [io.Writer] interface.
// If Write would extend past the underlying byte slice's capacity,
// then Write allocates a new byte slice large enough to fit the new bytes.
// Write returns an error if and only if the byte slice length would exceed
// the buffer's limit.
// If the offset is larger than the length of the underlying byte slice,
// then the intervening bytes are zero-filled.
func (b *Buffer) Write(p []byte) (n int, err error) {
	if b.limit == 0 {
		b.limit = math.MaxInt
	}
	if b.i > int64(b.limit-len(p)) {
		err = errTooLarge
		if b.i >= int64(b.limit) {
			return 0, err
		}
		p = p[:b.limit-int(b.i)]
	}

	switch {
	case b.i > int64(len(b.s)):
		b.s = append(append(b.s, make([]byte, int(b.i)-len(b.s))...), p...)
	case b.i+int64(len(p)) >= int64(len(b.s)):
		b.s = append(b.s[:b.i], p...)
	default:
		copy(b.s[b.i:], p)
	}
	b.i += int64(len(p))
	return len(p), err
}

// Seek implements the [io.Seeker] interface.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.i + offset
	case io.SeekEnd:
		abs = int64(len(b.s)) + offset
	default:
		return 0, errors.New("chunkio.Buffer.Seek: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("chunkio.Buffer.Seek: negative position")
	}
	b.i = abs
	return abs, nil
}

// WriteTo implements the [io.WriterTo] interface.
func (b *Buffer) WriteTo(w io.Writer) (n int64, err error) {
	if b.i >= int64(len(b.s)) {
		return 0, nil
	}
	p := b.s[b.i:]
	m, err := w.Write(p)
	if m > len(p) {
		panic("chunkio.Buffer.WriteTo: invalid Write count")
	}
	b.i += int64(m)
	n = int64(m)
	if m != len(p) && err == nil {
		err = io.ErrShortWrite
	}
	return
}

// Truncate changes the size of the buffer.
// It does not change the I/O offset.
func (b *Buffer) Truncate(size int64) error {
	switch {
	case b.limit > 0 && size > int64(b.limit):
		return errTooLarge
	case size < 0:
		return errors.New("chunkio.Buffer.Truncate: negative size")
	case int(size) < len(b.s):
		b.s = b.s[:size]
	case int(size) > len(b.s):
		newSlice := make([]byte, size)
		copy(newSlice, b.s)
		b.s = newSlice
	}
	return nil
}

// StripShebang returns source with a leading "#!" line removed,
// the way the standalone interpreter treats executable scripts.
// The line break is kept so line numbers in error messages stay accurate.
func StripShebang(source string) string {
	if !strings.HasPrefix(source, "#") {
		return source
	}
	if i := strings.IndexByte(source, '\n'); i >= 0 {
		return source[i:]
	}
	return ""
}

var errTooLarge = errors.New("chunk buffer too large")
