package localstore

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-monolith/mono"
)

// Module owns the file-backed store and flushes it on shutdown.
type Module struct {
	store *Store
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the localstore module. Path and debounce come from
// LOCAL_STORE_PATH and LOCAL_STORE_DEBOUNCE_MS.
func NewModule() *Module {
	path := os.Getenv("LOCAL_STORE_PATH")

	debounce := DefaultDebounce
	if v := os.Getenv("LOCAL_STORE_DEBOUNCE_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("[localstore] Invalid LOCAL_STORE_DEBOUNCE_MS %q, using default", v)
		} else {
			debounce = time.Duration(ms) * time.Millisecond
		}
	}

	return &Module{
		store: New(path, debounce),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "localstore"
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	log.Printf("[localstore] Module started (file: %s, debounce: %s)", m.store.path, m.store.debounce)
	return nil
}

// Stop flushes any pending write before shutdown.
func (m *Module) Stop(_ context.Context) error {
	m.store.Flush()
	log.Println("[localstore] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"file": m.store.path,
		},
	}
}

// Store returns the underlying blob store.
func (m *Module) Store() *Store {
	return m.store
}
