package iorouter

import (
	"bytes"
	"testing"
)

func TestRingBufferSnapshotOrder(t *testing.T) {
	r := newRingBuffer(3)
	r.Push([]byte("a"))
	r.Push([]byte("b"))
	r.Push([]byte("c"))

	got := r.Snapshot(100)
	want := []byte("abc")
	if !bytes.Equal(got, want) {
		t.Errorf("Snapshot() = %q, want %q", got, want)
	}
}

func TestRingBufferEvictsOldest(t *testing.T) {
	r := newRingBuffer(2)
	r.Push([]byte("a"))
	r.Push([]byte("b"))
	r.Push([]byte("c")) // evicts "a"

	got := r.Snapshot(100)
	want := []byte("bc")
	if !bytes.Equal(got, want) {
		t.Errorf("Snapshot() = %q, want %q", got, want)
	}
}

func TestRingBufferSnapshotTruncates(t *testing.T) {
	r := newRingBuffer(4)
	r.Push([]byte("abcd"))
	r.Push([]byte("efgh"))

	got := r.Snapshot(3)
	want := []byte("fgh")
	if !bytes.Equal(got, want) {
		t.Errorf("Snapshot(3) = %q, want %q", got, want)
	}
}

func TestRingBufferEmpty(t *testing.T) {
	r := newRingBuffer(4)
	got := r.Snapshot(100)
	if len(got) != 0 {
		t.Errorf("Snapshot() on empty buffer = %q, want empty", got)
	}
}

func TestRingBufferZeroCapacity(t *testing.T) {
	r := newRingBuffer(0)
	r.Push([]byte("a")) // must not panic

	got := r.Snapshot(100)
	if len(got) != 0 {
		t.Errorf("Snapshot() on zero-capacity buffer = %q, want empty", got)
	}
}

func TestRingBufferWrapsAfterFull(t *testing.T) {
	r := newRingBuffer(2)
	r.Push([]byte("a"))
	r.Push([]byte("b"))
	r.Push([]byte("c"))
	r.Push([]byte("d"))

	got := r.Snapshot(100)
	want := []byte("cd")
	if !bytes.Equal(got, want) {
		t.Errorf("Snapshot() = %q, want %q", got, want)
	}
}
