// mechcore runs the accessory sandbox in the local terminal for a single
// player. The SSH server in cmd/server hosts the same board for many.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"

	"github.com/gdamore/tcell/v2"

	"mechcore/internal/config"
	"mechcore/internal/session"
	"mechcore/internal/storage"
)

func main() {
	cfgPath := flag.String("config", "", "Path to a YAML config file")
	name := flag.String("name", defaultName(), "Player name")
	dataDir := flag.String("data", "", "Directory to keep the loadout in between runs (off when empty)")
	logPath := flag.String("log", "", "Append logs to this file (discarded when empty)")
	flag.Parse()

	if err := run(*cfgPath, *name, *dataDir, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, name, dataDir, logPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// The board owns the terminal, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.Level()}))

	opts := []session.Option{session.WithLogger(logger)}
	if dataDir != "" {
		db, err := storage.Open(storage.Config{Path: dataDir, SyncWrites: true, Logger: logger})
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer db.Close()
		opts = append(opts, session.WithLoadouts(storage.NewLoadouts(db, logger)))
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := session.NewServer(cfg, opts...)
	go srv.Run(ctx)

	sess := srv.Join(ctx, name, screen)
	srv.RunLoop(sess)
	srv.Leave(ctx, sess)
	return nil
}

func defaultName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "player"
}
