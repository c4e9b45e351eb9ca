// Package client implements the taskmeister CLI's connection to a running
// daemon (spec.md §6): one short-lived TCP connection per command, except
// Attach, which stays open streaming ResponseParts until the peer or the
// caller hangs up.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/migueldar/taskmeister/internal/taskmeister/protocol"
)

// Client dials addr fresh for every command.
type Client struct {
	addr string
}

// New creates a Client targeting addr ("host:port").
func New(addr string) *Client {
	return &Client{addr: addr}
}

// Do sends req and returns its single JSON array of ResponseParts.
func (c *Client) Do(req protocol.Request) ([]protocol.ResponsePart, error) {
	conn, err := net.Dial("tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	var parts []protocol.ResponsePart
	if err := json.NewDecoder(conn).Decode(&parts); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return parts, nil
}

// Input sends interactive stdin bytes for alias, using the Stream field
// (spec.md §6: a non-nil Stream always means stdin input).
func (c *Client) Input(alias string, data []byte) error {
	_, err := c.Do(protocol.Request{Args: []string{alias}, Stream: data})
	return err
}

// Attach opens a dedicated connection, issues Attach for alias, and streams
// every ResponsePart it receives to out until the connection closes or ctx
// is canceled. out is closed when Attach returns.
func (c *Client) Attach(ctx context.Context, alias string, out chan<- protocol.ResponsePart) error {
	defer close(out)

	conn, err := net.Dial("tcp", c.addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	req := protocol.Request{Command: protocol.CmdAttach, Args: []string{alias}}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("send attach request: %w", err)
	}

	dec := json.NewDecoder(conn)
	for {
		var parts []protocol.ResponsePart
		if err := dec.Decode(&parts); err != nil {
			return nil
		}
		for _, p := range parts {
			out <- p
		}
	}
}
