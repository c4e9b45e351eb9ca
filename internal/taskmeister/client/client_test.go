package client

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/migueldar/taskmeister/internal/taskmeister/protocol"
)

// fakeServer accepts exactly one connection, decodes one Request, and hands
// it to handle, which is responsible for writing back whatever JSON frames
// it wants before the connection closes.
func fakeServer(t *testing.T, handle func(conn net.Conn, req protocol.Request)) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		var req protocol.Request
		if err := json.NewDecoder(conn).Decode(&req); err != nil {
			return
		}
		handle(conn, req)
	}()

	return ln.Addr().String()
}

func TestClientDo(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn, req protocol.Request) {
		if req.Command != protocol.CmdList {
			t.Errorf("server saw Command = %q, want %q", req.Command, protocol.CmdList)
		}
		json.NewEncoder(conn).Encode([]protocol.ResponsePart{protocol.Info("a\tb")})
	})

	cl := New(addr)
	parts, err := cl.Do(protocol.Request{Command: protocol.CmdList})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if len(parts) != 1 || parts[0].Info == nil || *parts[0].Info != "a\tb" {
		t.Fatalf("Do() = %+v, want a single Info part", parts)
	}
}

func TestClientDoDialFailure(t *testing.T) {
	cl := New("127.0.0.1:1")
	if _, err := cl.Do(protocol.Request{Command: protocol.CmdList}); err == nil {
		t.Fatal("Do() error = nil, want a dial error")
	}
}

func TestClientInputSendsStreamField(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn, req protocol.Request) {
		if string(req.Stream) != "hello" || len(req.Args) != 1 || req.Args[0] != "web" {
			t.Errorf("server saw req = %+v, want Stream=hello Args=[web]", req)
		}
		json.NewEncoder(conn).Encode([]protocol.ResponsePart{protocol.Info("OK")})
	})

	cl := New(addr)
	if err := cl.Input("web", []byte("hello")); err != nil {
		t.Fatalf("Input() error = %v", err)
	}
}

func TestClientAttachStreamsUntilServerCloses(t *testing.T) {
	addr := fakeServer(t, func(conn net.Conn, req protocol.Request) {
		if req.Command != protocol.CmdAttach {
			t.Errorf("server saw Command = %q, want %q", req.Command, protocol.CmdAttach)
		}
		enc := json.NewEncoder(conn)
		enc.Encode([]protocol.ResponsePart{protocol.Stream([]byte("one"))})
		enc.Encode([]protocol.ResponsePart{protocol.Stream([]byte("two"))})
		// Closing the connection is the signal Attach's read loop treats as
		// end-of-stream.
	})

	cl := New(addr)
	out := make(chan protocol.ResponsePart, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- cl.Attach(ctx, "web", out) }()

	var got []string
	deadline := time.After(2 * time.Second)
collect:
	for {
		select {
		case p, ok := <-out:
			if !ok {
				break collect
			}
			got = append(got, string(p.Stream))
		case <-deadline:
			t.Fatal("timed out waiting for streamed parts")
		}
	}

	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("streamed parts = %v, want [one two]", got)
	}
	if err := <-done; err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
}

func TestClientAttachCanceledByContext(t *testing.T) {
	serverDone := make(chan struct{})
	addr := fakeServer(t, func(conn net.Conn, req protocol.Request) {
		<-serverDone
	})
	defer close(serverDone)

	cl := New(addr)
	out := make(chan protocol.ResponsePart, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- cl.Attach(ctx, "web", out) }()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Attach() error = %v, want nil after cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Attach to return after cancel")
	}
}
