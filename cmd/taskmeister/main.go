// Command taskmeister is the interactive CLI client for taskmeisterd
// (spec.md §6): one positional argument (the daemon's host:port), `-f` for
// the readline history file (the file is used as-is; no client config file
// is parsed), `-c` to run a single command and exit, and `-h` for help.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"

	"github.com/migueldar/taskmeister/internal/taskmeister/client"
	"github.com/migueldar/taskmeister/internal/taskmeister/config"
	"github.com/migueldar/taskmeister/internal/taskmeister/protocol"
)

const (
	exitOK          = 0
	exitInterrupted = 1
	exitErrorReply  = 2
	exitOther       = 3
)

var (
	configPath = flag.String("f", "", "path to the readline history file")
	oneShot    = flag.String("c", "", "run a single command and exit")
	showHelp   = flag.Bool("h", false, "show help and exit")
)

func main() {
	flag.Parse()

	if *showHelp {
		printUsage()
		os.Exit(exitOK)
	}
	if flag.NArg() != 1 {
		printUsage()
		os.Exit(exitOther)
	}
	addr := flag.Arg(0)

	historyFile, err := resolveHistoryFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskmeister: %v\n", err)
		os.Exit(exitOther)
	}

	cl := client.New(addr)

	if *oneShot != "" {
		os.Exit(runLine(context.Background(), cl, *oneShot))
	}

	os.Exit(runREPL(cl, historyFile))
}

func resolveHistoryFile(configPath string) (string, error) {
	if configPath == "" {
		return config.DefaultHistoryFile()
	}
	return configPath, nil
}

func runREPL(cl *client.Client, historyFile string) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "taskmeister> ",
		HistoryFile: historyFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskmeister: %v\n", err)
		return exitOther
	}
	defer rl.Close()

	for {
		select {
		case <-ctx.Done():
			return exitInterrupted
		default:
		}

		line, err := rl.Readline()
		if err != nil { // io.EOF (Ctrl-D) or readline.ErrInterrupt (Ctrl-C)
			return exitOK
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if code := runLine(ctx, cl, line); code == exitInterrupted {
			return code
		}
	}
}

// runLine parses and executes one command line, printing the response, and
// returns the exit code it would warrant in -c mode.
func runLine(ctx context.Context, cl *client.Client, line string) int {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return exitOther
	}
	req := protocol.Request{Command: fields[0], Args: fields[1:]}

	if isAttachCommand(req.Command) && len(req.Args) == 1 {
		return runAttach(ctx, cl, req.Args[0])
	}

	parts, err := cl.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskmeister: %v\n", err)
		return exitOther
	}
	return printParts(parts)
}

func runAttach(ctx context.Context, cl *client.Client, alias string) int {
	out := make(chan protocol.ResponsePart, 16)
	errCh := make(chan error, 1)
	go func() { errCh <- cl.Attach(ctx, alias, out) }()

	sawError := false
	for part := range out {
		printPart(part)
		if part.IsError() {
			sawError = true
		}
	}
	if err := <-errCh; err != nil {
		fmt.Fprintf(os.Stderr, "taskmeister: %v\n", err)
		return exitOther
	}
	if sawError {
		return exitErrorReply
	}
	return exitOK
}

func isAttachCommand(cmd string) bool {
	return cmd == protocol.CmdAttach || cmd == protocol.CmdAttachShort
}

func printParts(parts []protocol.ResponsePart) int {
	sawError := false
	for _, p := range parts {
		printPart(p)
		if p.IsError() {
			sawError = true
		}
	}
	if sawError {
		return exitErrorReply
	}
	return exitOK
}

func printPart(p protocol.ResponsePart) {
	switch {
	case p.Error != nil:
		fmt.Fprintf(os.Stderr, "error: %s\n", *p.Error)
	case p.Info != nil:
		fmt.Println(*p.Info)
	case p.Stream != nil:
		os.Stdout.Write(p.Stream)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: taskmeister [-f FILE] [-c "command"] [-h] host:port

  -f FILE   path to the readline history file
  -c "..."  run a single command and exit
  -h        show this help`)
}
