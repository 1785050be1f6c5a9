// Copyright 2025 The moonbind Authors
// SPDX-License-Identifier: MIT

package chunkio

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMode(t *testing.T) {
	tests := []struct {
		name   string
		prefix []byte
		want   string
	}{
		{name: "Empty", prefix: nil, want: "t"},
		{name: "Source", prefix: []byte("return 1"), want: "t"},
		{name: "Precompiled", prefix: []byte(Signature + "\x54"), want: "b"},
		{name: "EscapeOnly", prefix: []byte{0x1b}, want: "b"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Mode(test.prefix); got != test.want {
				t.Errorf("Mode(%q) = %q; want %q", test.prefix, got, test.want)
			}
		})
	}
}

func TestReader(t *testing.T) {
	r := NewReader(strings.NewReader("return 1"))
	mode, err := r.Mode()
	if err != nil {
		t.Fatal(err)
	}
	if mode != "t" {
		t.Errorf("Mode() = %q; want %q", mode, "t")
	}
	// The peeked byte must still come through Read.
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "return 1"; got != want {
		t.Errorf("ReadAll = %q; want %q", got, want)
	}
}

func TestSourceName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "", want: "=stdin"},
		{path: "-", want: "=stdin"},
		{path: "init.lua", want: "@init.lua"},
	}
	for _, test := range tests {
		if got := SourceName(test.path); got != test.want {
			t.Errorf("SourceName(%q) = %q; want %q", test.path, got, test.want)
		}
	}
}

func TestBuffer(t *testing.T) {
	b := New(nil)
	if _, err := b.Write([]byte(Signature)); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Write([]byte{0x54, 0x00}); err != nil {
		t.Fatal(err)
	}
	if !b.IsBinary() {
		t.Error("IsBinary() = false after writing a signed chunk")
	}
	if got, want := b.Size(), int64(len(Signature)+2); got != want {
		t.Errorf("Size() = %d; want %d", got, want)
	}

	// Rewind and read everything back.
	if _, err := b.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(b)
	if err != nil {
		t.Fatal(err)
	}
	want := append([]byte(Signature), 0x54, 0x00)
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("round-tripped chunk (-want +got):\n%s", diff)
	}
}

func TestBufferSparseWrite(t *testing.T) {
	b := New(nil)
	if _, err := b.Seek(4, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Write([]byte{0xff}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(b)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0, 0, 0, 0xff}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("sparse write (-want +got):\n%s", diff)
	}
}

func TestBufferLimit(t *testing.T) {
	b := New(nil)
	b.SetLimit(4)
	n, err := b.Write([]byte("123456"))
	if err == nil {
		t.Error("Write past the limit did not report an error")
	}
	if n != 4 {
		t.Errorf("Write past the limit wrote %d bytes; want 4", n)
	}
	if err := b.Truncate(8); err == nil {
		t.Error("Truncate past the limit did not report an error")
	}
}

func TestStripShebang(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{source: "return 1", want: "return 1"},
		{source: "#!/usr/bin/env mlua\nreturn 1", want: "\nreturn 1"},
		{source: "#!/usr/bin/env mlua", want: ""},
	}
	for _, test := range tests {
		if got := StripShebang(test.source); got != test.want {
			t.Errorf("StripShebang(%q) = %q; want %q", test.source, got, test.want)
		}
	}
}
