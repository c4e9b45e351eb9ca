// Command taskmeisterd is the supervisor daemon: it loads a Service
// Registry from disk, drives the Watcher/I-O Router/Orchestrator support
// threads, and serves the Request Gateway (spec.md §2, §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/migueldar/taskmeister/internal/taskmeister/config"
	"github.com/migueldar/taskmeister/internal/taskmeister/gateway"
	"github.com/migueldar/taskmeister/internal/taskmeister/iorouter"
	"github.com/migueldar/taskmeister/internal/taskmeister/orchestrator"
	"github.com/migueldar/taskmeister/internal/taskmeister/service"
	"github.com/migueldar/taskmeister/internal/taskmeister/watcher"
	"github.com/migueldar/taskmeister/internal/tlog"
)

var configPath = flag.String("f", "/etc/taskmeister/taskmeisterd.toml", "path to the server config file")

const (
	watchPeriod  = 100 * time.Millisecond
	routerPeriod = 50 * time.Millisecond
)

func main() {
	flag.Parse()

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskmeisterd: %v\n", err)
		os.Exit(1)
	}

	logWriter, err := openLogSink(*cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskmeisterd: %v\n", err)
		os.Exit(1)
	}
	logger := tlog.New(logWriter, "taskmeisterd")

	registry, err := service.Load(cfg.Include.Paths)
	if err != nil {
		logger.Errorf("load service registry: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := iorouter.New(routerPeriod)
	orch := orchestrator.New(registry, router, cfg.Include.Paths)
	w := watcher.New(orch.Events(), watchPeriod)
	orch.SetWatcher(w)

	gw := gateway.New(cfg.ServerAddr, orch, cancel)

	go w.Run(ctx)
	go router.Run(ctx)
	go orch.Run(ctx)

	for _, alias := range cfg.Start.Services {
		if err := orch.StartAlias(ctx, alias); err != nil {
			logger.Errorf("start %s: %v", alias, err)
			os.Exit(1)
		}
	}

	go handleReloadSignal(ctx, orch, logger)

	logger.Infof("taskmeisterd ready, serving %s", cfg.ServerAddr)
	if err := gw.Run(ctx); err != nil {
		logger.Errorf("gateway: %v", err)
		os.Exit(1)
	}
}

// handleReloadSignal translates SIGHUP into a Reload request (spec.md §4.5),
// the conventional Unix daemon idiom for "re-read your config".
func handleReloadSignal(ctx context.Context, orch *orchestrator.Orchestrator, logger *tlog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			req := orchestrator.NewRequest(orchestrator.ReloadAction{})
			orch.Submit(req)
			for part := range req.Reply {
				if part.IsError() {
					logger.Errorf("reload: %s", *part.Error)
				}
			}
		}
	}
}

func openLogSink(cfg config.Server) (io.Writer, error) {
	var file io.Writer = os.Stdout
	if cfg.Logs != "" {
		f, err := os.OpenFile(cfg.Logs, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", cfg.Logs, err)
		}
		file = f
	}
	return tlog.Sinks(file, cfg.Syslog)
}
