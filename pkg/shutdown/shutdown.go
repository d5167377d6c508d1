// Package shutdown coordinates graceful teardown of the serve command:
// hooks run LIFO under a shared duration-typed deadline, and each hook's
// runtime is measured against the monotonic clock.
package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/timekit-io/timekit/pkg/logging"
	"github.com/timekit-io/timekit/pkg/timespan"
)

// Hook is one named teardown step.
type Hook struct {
	Name string
	Run  func(context.Context) error
}

// Manager handles graceful shutdown
type Manager struct {
	hooks    []Hook
	mu       sync.Mutex
	timeout  timespan.Duration
	doneChan chan struct{}
	once     sync.Once
	log      *logging.Logger
}

// New creates a new shutdown manager
func New(timeout timespan.Duration, log *logging.Logger) *Manager {
	return &Manager{
		timeout:  timeout,
		doneChan: make(chan struct{}),
		log:      log,
	}
}

// Register adds a teardown hook. Hooks run in reverse registration order.
func (m *Manager) Register(name string, fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, Hook{Name: name, Run: fn})
}

// Wait blocks until a shutdown signal is received
func (m *Manager) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	m.log.Info("received signal, initiating graceful shutdown", map[string]interface{}{"signal": sig.String()})

	m.once.Do(func() {
		close(m.doneChan)
	})
}

// Done returns a channel that is closed when shutdown is initiated
func (m *Manager) Done() <-chan struct{} {
	return m.doneChan
}

// Shutdown runs all hooks LIFO under the manager's deadline, logging how
// long each one took.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	budget, err := m.timeout.Std()
	if err != nil {
		budget = time.Duration(1<<63 - 1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	for i := len(m.hooks) - 1; i >= 0; i-- {
		hook := m.hooks[i]
		var hookErr error
		took := timespan.Measure(func() {
			hookErr = hook.Run(ctx)
		})
		if hookErr != nil {
			m.log.Error("shutdown hook failed", map[string]interface{}{
				"hook":  hook.Name,
				"took":  took.String(),
				"error": hookErr.Error(),
			})
			continue
		}
		m.log.Debug("shutdown hook done", map[string]interface{}{"hook": hook.Name, "took": took.String()})
	}

	m.log.Info("graceful shutdown complete")
}

// WaitWithContext blocks until a shutdown signal or context cancellation
func (m *Manager) WaitWithContext(ctx context.Context) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigChan:
		m.log.Info("received signal, initiating graceful shutdown", map[string]interface{}{"signal": sig.String()})
		m.Shutdown()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StopHTTPServer creates a teardown hook body for an http.Server
func StopHTTPServer(server interface{ Shutdown(context.Context) error }, name string) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to stop %s server: %w", name, err)
		}
		return nil
	}
}

// CloseResource creates a teardown hook body for an io.Closer
func CloseResource(closer interface{ Close() error }, name string) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", name, err)
		}
		return nil
	}
}
