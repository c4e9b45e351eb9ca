// Package gateway implements the Request Gateway support thread (spec.md
// §4.4): it accepts TCP connections, decodes JSON-framed client Requests,
// translates them into Orchestrator Actions, and writes back ResponseParts.
package gateway

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"sync"

	"github.com/migueldar/taskmeister/internal/taskmeister/orchestrator"
	"github.com/migueldar/taskmeister/internal/taskmeister/protocol"
	"github.com/migueldar/taskmeister/internal/tlog"
)

var logger = tlog.New(os.Stdout, "gateway")

// Gateway accepts client connections and feeds Requests to an Orchestrator.
type Gateway struct {
	addr     string
	orch     *orchestrator.Orchestrator
	shutdown func()
}

// New creates a Gateway listening on addr. shutdown, if non-nil, is called
// when a client issues stop_server (spec.md §6).
func New(addr string, orch *orchestrator.Orchestrator, shutdown func()) *Gateway {
	return &Gateway{addr: addr, orch: orch, shutdown: shutdown}
}

// Run listens on g.addr and serves it until ctx is canceled.
func (g *Gateway) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", g.addr)
	if err != nil {
		return err
	}
	return g.Serve(ctx, ln)
}

// Serve accepts connections on ln, one goroutine per connection, until ctx
// is canceled. Exposed separately from Run so tests can supply a listener
// already bound to an ephemeral port.
func (g *Gateway) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	logger.Infof("listening on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			logger.Warnf("accept: %v", err)
			continue
		}
		go g.serve(ctx, conn)
	}
}

// serve handles exactly one client Request per connection: Attach streams
// until the peer hangs up, every other command replies with one JSON array
// of ResponseParts (spec.md §6).
func (g *Gateway) serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	var wireReq protocol.Request
	if err := dec.Decode(&wireReq); err != nil {
		return
	}

	if wireReq.Command == protocol.CmdStopServer {
		g.handleStopServer(enc)
		return
	}

	action, err := translate(wireReq)
	if err != nil {
		enc.Encode([]protocol.ResponsePart{protocol.Err(err.Error())})
		return
	}

	if attach, ok := action.(orchestrator.AttachAction); ok {
		g.serveAttach(ctx, conn, enc, attach)
		return
	}

	req := orchestrator.NewRequest(action)
	g.orch.Submit(req)

	var parts []protocol.ResponsePart
	for part := range req.Reply {
		parts = append(parts, part)
	}
	if err := enc.Encode(parts); err != nil {
		logger.Warnf("encode response: %v", err)
	}
}

// serveAttach streams one ResponsePart per JSON array, one array per line,
// until the Orchestrator's forwarder goroutine observes the Cancel channel
// close (spec.md §4.2 "until the peer hangs up or the channel closes").
func (g *Gateway) serveAttach(ctx context.Context, conn net.Conn, enc *json.Encoder, action orchestrator.AttachAction) {
	cancel := make(chan struct{})
	var once sync.Once
	closeCancel := func() { once.Do(func() { close(cancel) }) }

	action.Cancel = cancel
	req := orchestrator.NewRequest(action)
	g.orch.Submit(req)

	go func() {
		// A peer attached purely to stream output never writes; any Read
		// returning (EOF or otherwise) means it hung up.
		var b [1]byte
		conn.Read(b[:])
		closeCancel()
	}()
	go func() {
		<-ctx.Done()
		closeCancel()
	}()

	for part := range req.Reply {
		if err := enc.Encode([]protocol.ResponsePart{part}); err != nil {
			closeCancel()
		}
	}
}

func (g *Gateway) handleStopServer(enc *json.Encoder) {
	enc.Encode([]protocol.ResponsePart{protocol.Info("OK")})
	if g.shutdown != nil {
		g.shutdown()
	}
}
