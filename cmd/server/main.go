// mechcore-server serves the accessory sandbox over SSH. Every connection
// gets its own player, core and accessory kit on a shared training ground.
// Build:
//
//	go build -o mechcore-server ./cmd/server
//
// Usage:
//
//	./mechcore-server [-config mechcore.yaml] [-port 2222] [-key server_host_key]
//
// Connect:
//
//	ssh -t -p 2222 localhost
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode"
	"unicode/utf8"

	gossh "github.com/gliderlabs/ssh"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	xssh "golang.org/x/crypto/ssh"

	"mechcore/internal/config"
	"mechcore/internal/metrics"
	"mechcore/internal/session"
	internalssh "mechcore/internal/ssh"
	"mechcore/internal/storage"
)

// maxNameBytes caps player names so they fit the status line.
const maxNameBytes = 16

func main() {
	cfgPath := flag.String("config", "", "Path to a YAML config file (watched for changes)")
	port := flag.Int("port", 0, "SSH server port (overrides the config)")
	keyFile := flag.String("key", "", "Path to the PEM-encoded host key (auto-generated if absent)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *keyFile != "" {
		cfg.Server.HostKey = *keyFile
	}

	var level slog.LevelVar
	level.Set(cfg.Level())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *cfgPath, &level, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, cfgPath string, level *slog.LevelVar, logger *slog.Logger) error {
	db, err := storage.Open(storage.Config{
		Path:       cfg.Storage.Path,
		InMemory:   cfg.Storage.InMemory,
		SyncWrites: cfg.Storage.SyncWrites,
		Logger:     logger.With("component", "badger"),
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	srv := session.NewServer(cfg,
		session.WithLogger(logger),
		session.WithMetrics(m),
		session.WithLoadouts(storage.NewLoadouts(db, logger)),
	)
	go srv.Run(ctx)

	if cfgPath != "" {
		go func() {
			err := config.Watch(ctx, cfgPath, logger, func(next *config.Config) {
				level.Set(next.Level())
				srv.ApplyConfig(next)
			})
			if err != nil {
				logger.Warn("config watch disabled", "path", cfgPath, "error", err)
			}
		}()
	}

	if cfg.Server.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.Server.MetricsAddr, reg, logger)
	}

	signer, err := loadOrCreateHostKey(cfg.Server.HostKey, logger)
	if err != nil {
		return err
	}

	sshSrv := &gossh.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handleSession(srv, logger),
		// Accept PTY requests from any client.
		PtyCallback: func(_ gossh.Context, _ gossh.Pty) bool { return true },
		// Any client may connect; the SSH user name becomes the player name.
		HostSigners: []gossh.Signer{signer},
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sshSrv.Shutdown(shutdown); err != nil {
			logger.Warn("ssh shutdown", "error", err)
		}
	}()

	logger.Info("mechcore SSH server listening", "port", cfg.Server.Port)
	logger.Info("connect with", "cmd", fmt.Sprintf("ssh -t -p %d -o StrictHostKeyChecking=no localhost", cfg.Server.Port))
	if err := sshSrv.ListenAndServe(); err != nil && !errors.Is(err, gossh.ErrServerClosed) {
		return err
	}
	return nil
}

// handleSession is the gliderlabs SSH handler for one connection. It blocks
// for the duration of the connection so the SSH session stays open.
func handleSession(srv *session.Server, logger *slog.Logger) gossh.Handler {
	return func(s gossh.Session) {
		screen, err := internalssh.NewScreen(s)
		if errors.Is(err, internalssh.ErrNoPTY) {
			fmt.Fprintln(s, "mechcore needs a terminal. Connect with: ssh -t -p <port> <host>")
			return
		}
		if err != nil {
			logger.Warn("screen setup failed", "user", s.User(), "remote", s.RemoteAddr().String(), "error", err)
			fmt.Fprintf(s, "Terminal setup failed: %v\n", err)
			return
		}
		defer screen.Fini()

		name := sanitizeName(s.User())
		if name == "" {
			name = "guest"
		}
		sess := srv.Join(s.Context(), name, screen)
		srv.RunLoop(sess)
		// The SSH context is cancelled on disconnect; saving must still run.
		srv.Leave(context.WithoutCancel(s.Context()), sess)
	}
}

// sanitizeName drops control characters and cuts the name to maxNameBytes
// without splitting a rune.
func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == utf8.RuneError || unicode.IsControl(r) {
			continue
		}
		if b.Len()+utf8.RuneLen(r) > maxNameBytes {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = hs.Close()
	}()
	logger.Info("metrics listening", "addr", addr)
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("metrics server stopped", "error", err)
	}
}

// loadOrCreateHostKey loads a PEM private key from path, or generates and
// persists a new ed25519 key if the file is absent or unreadable.
func loadOrCreateHostKey(path string, logger *slog.Logger) (gossh.Signer, error) {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := xssh.ParsePrivateKey(data); err == nil {
			logger.Info("loaded host key", "path", path)
			return signer, nil
		}
	}

	logger.Info("generating ed25519 host key", "path", path)
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	signer, err := xssh.NewSignerFromKey(key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	pemBlock, err := xssh.MarshalPrivateKey(key, "mechcore server")
	if err != nil {
		return signer, nil
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(pemBlock), 0o600); err != nil {
		logger.Warn("host key not persisted", "path", path, "error", err)
	}
	return signer, nil
}
