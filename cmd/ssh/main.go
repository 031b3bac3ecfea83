package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/voidminer/internal/config"
	"github.com/tomz197/voidminer/internal/draw"
	"github.com/tomz197/voidminer/internal/loop/client"
	"github.com/tomz197/voidminer/internal/loop/engine"
	"github.com/tomz197/voidminer/internal/store"
	"github.com/tomz197/voidminer/internal/telemetry"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultDBPath      = "/app/data/pilots.db"
	sessionDrain       = 15 * time.Second
)

// sessions runs one independent game per SSH connection and tracks them for
// shutdown.
type sessions struct {
	ctx    context.Context
	cancel context.CancelFunc
	tuning *config.Tuning
	store  *store.Store
	ledger *telemetry.Ledger
	logger *log.Logger

	// mu orders begin against drain so no session is added once the
	// WaitGroup is being waited on.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func newSessions(tun *config.Tuning, records *store.Store, ledger *telemetry.Ledger, logger *log.Logger) *sessions {
	ctx, cancel := context.WithCancel(context.Background())
	return &sessions{
		ctx:    ctx,
		cancel: cancel,
		tuning: tun,
		store:  records,
		ledger: ledger,
		logger: logger,
	}
}

func main() {
	logger := config.NewLogger(os.Stderr, "voidminer")

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	dbPath := config.GetEnv("GAME_DB", defaultDBPath)
	ledgerPath := config.GetEnv("GAME_LEDGER", "")
	workingDir, workErr := os.Getwd()
	if workErr != nil {
		logger.Warn("failed to get working directory", "err", workErr)
	}
	logger.Info("ssh config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "db", dbPath, "workingDir", workingDir)

	tun, err := config.Load(config.GetEnv("GAME_TUNING", ""))
	if err != nil {
		logger.Fatal("loading tuning", "err", err)
	}

	var records *store.Store
	if dbPath != "" {
		records, err = store.Open(dbPath)
		if err != nil {
			logger.Fatal("opening pilot store", "err", err)
		}
		defer records.Close()
	}

	ledger, err := telemetry.Open(ledgerPath)
	if err != nil {
		logger.Fatal("opening ledger", "err", err)
	}
	defer ledger.Close()

	sess := newSessions(tun, records, ledger, logger)
	defer sess.cancel()

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			sess.middleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	// Every session shows the shutdown notice and disconnects on its own.
	if sess.drain(sessionDrain) {
		logger.Info("all sessions ended")
	} else {
		logger.Warn("sessions still open after drain", "timeout", sessionDrain)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}

// begin registers a new session. It reports false once draining started.
func (m *sessions) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.wg.Add(1)
	return true
}

// drain stops new sessions, cancels the running ones and waits for them.
func (m *sessions) drain(timeout time.Duration) bool {
	m.mu.Lock()
	m.closed = true
	m.cancel()
	m.mu.Unlock()
	return m.wait(timeout)
}

// wait blocks until every session has ended or timeout passes.
func (m *sessions) wait(timeout time.Duration) bool {
	finished := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return true
	case <-time.After(timeout):
		return false
	}
}

// middleware handles SSH sessions and runs one game client each.
func (m *sessions) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}
		if !m.begin() {
			fmt.Fprintln(sess, "Server is shutting down. Please reconnect in a moment.")
			return
		}
		defer m.wg.Done()

		logger := m.logger.With("user", sess.User())
		logger.Info("new game session", "terminal", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		c := client.New(bufio.NewReader(sess), sess, client.Options{
			Engine: engine.Options{
				Tuning: m.tuning,
				Seed:   time.Now().UnixNano(),
			},
			Store:        m.store,
			Ledger:       m.ledger,
			Pilot:        sess.User(),
			TermSizeFunc: sizeTracker.getSize,
			Mouse:        true,
			Logger:       logger,
		})
		if err := c.Run(m.ctx); err != nil {
			logger.Error("game error", "err", err)
		}

		logger.Info("session ended")
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
