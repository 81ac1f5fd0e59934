// Package app wires the board service to the interactive command loop.
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bbs/pkg/banner"
	"bbs/pkg/board"
	"bbs/pkg/cli"
	"bbs/pkg/config"
	"bbs/pkg/logger"
	"bbs/pkg/session"
	"bbs/pkg/validation"
)

// App encapsulates the board components and the interactive session loop.
type App struct {
	cfg   *config.Config
	svc   *board.Service
	fresh bool

	in  *bufio.Scanner
	out io.Writer
}

// New builds an App from the effective config. fresh requests a clean
// bring-up: the first connect reseeds the identifier pool.
func New(cfg *config.Config, fresh bool, in io.Reader, out io.Writer) *App {
	validation.SetRules(validation.Rules{MaxSubjectLen: cfg.Validation.MaxSubjectLen})

	sess := &session.Session{}
	svc := board.New(board.Options{
		DataDir:         cfg.Storage.DataDir,
		MaxMessages:     cfg.Storage.MaxMessages,
		ShardSize:       cfg.Storage.ShardSize,
		MetricsSnapshot: cfg.Metrics.Snapshot,
	}, sess)

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	return &App{cfg: cfg, svc: svc, fresh: fresh, in: sc, out: out}
}

// Service exposes the underlying board service, mainly for tests.
func (a *App) Service() *board.Service { return a.svc }

// Run drives the interactive session until the user exits or ctx is
// cancelled. Invalid commands are reported and re-prompted, never fatal.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "Welcome to the board!")
	if !a.connectPrompt(a.fresh) {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			a.svc.Disconnect()
			return nil
		default:
		}

		banner.Menu(a.out)
		line, ok := a.readLine()
		if !ok {
			a.svc.Disconnect()
			return nil
		}
		tokens := cli.SplitQuoted(line)
		if len(tokens) == 0 {
			continue
		}
		if done := a.dispatch(tokens); done {
			return nil
		}
	}
}

// dispatch runs one command. The returned bool is true when the session
// loop should terminate.
func (a *App) dispatch(tokens []string) bool {
	switch strings.ToUpper(tokens[0]) {
	case "A":
		if len(tokens) < 3 {
			fmt.Fprintln(a.out, "usage: A <subj> <msg>")
			return false
		}
		id, err := a.svc.Post(tokens[1], tokens[2])
		if err != nil {
			fmt.Fprintf(a.out, "post failed: %v\n", err)
			return false
		}
		fmt.Fprintf(a.out, "posted message %d\n", id)
	case "D":
		id, ok := a.parseID(tokens)
		if !ok {
			return false
		}
		if err := a.svc.Delete(id); err != nil {
			fmt.Fprintf(a.out, "delete failed: %v\n", err)
			return false
		}
		fmt.Fprintf(a.out, "deleted message %d\n", id)
	case "S":
		term := ""
		if len(tokens) > 1 {
			term = tokens[1]
		}
		text, err := a.svc.Summarize(term)
		if err != nil {
			fmt.Fprintf(a.out, "summary failed: %v\n", err)
			return false
		}
		fmt.Fprint(a.out, text)
	case "V":
		id, ok := a.parseID(tokens)
		if !ok {
			return false
		}
		text, err := a.svc.View(id)
		if err != nil {
			fmt.Fprintf(a.out, "view failed: %v\n", err)
			return false
		}
		fmt.Fprint(a.out, text)
	case "X":
		a.svc.Disconnect()
		fmt.Fprintln(a.out, "Goodbye!")
		return true
	case "SOFTX":
		a.svc.SoftDisconnect()
		// hand the board to the next user; state stays warm
		if !a.connectPrompt(false) {
			return true
		}
	default:
		fmt.Fprintf(a.out, "Unknown command: %s\n", tokens[0])
	}
	return false
}

// connectPrompt asks for a username and connects it. Returns false when
// input is exhausted.
func (a *App) connectPrompt(fresh bool) bool {
	for {
		fmt.Fprintln(a.out, "What is your username?")
		name, ok := a.readLine()
		if !ok {
			return false
		}
		if err := a.svc.Connect(strings.TrimSpace(name), fresh); err != nil {
			fmt.Fprintf(a.out, "connect failed: %v\n", err)
			continue
		}
		return true
	}
}

func (a *App) parseID(tokens []string) (int, bool) {
	if len(tokens) < 2 {
		fmt.Fprintf(a.out, "usage: %s <msg-num>\n", strings.ToUpper(tokens[0]))
		return 0, false
	}
	id, err := strconv.Atoi(tokens[1])
	if err != nil || id <= 0 {
		fmt.Fprintf(a.out, "not a message number: %s\n", tokens[1])
		return 0, false
	}
	return id, true
}

func (a *App) readLine() (string, bool) {
	if !a.in.Scan() {
		if err := a.in.Err(); err != nil {
			logger.Error("input_read_failed", "error", err)
		}
		return "", false
	}
	return a.in.Text(), true
}
