// Package backend selects and wires the data backend the dashboard runs
// against: the real agrly REST client or the seeded memory store.
package backend

import (
	"fmt"
	"log/slog"

	"agrly-admin/internal/config"
	"agrly-admin/internal/platform"
	"agrly-admin/internal/platform/agrly"
	"agrly-admin/internal/platform/memory"
	"agrly-admin/internal/session"
)

type Type string

const (
	AgrlyBackend  Type = "agrly"
	MemoryBackend Type = "memory"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case AgrlyBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Result carries the wired backend and an optional cleanup function to run
// on shutdown.
type Result struct {
	Backend platform.Backend
	Cleanup func() error
}

// Create builds the backend named by the configuration.
func Create(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backendType := Type(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch backendType {
	case AgrlyBackend:
		store, err := session.Open(cfg.SessionDBPath)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}

		sess := agrly.NewSession(store)
		client := agrly.New(cfg.BaseURL, sess)

		logger.Info("Initialized agrly backend",
			"base_url", cfg.BaseURL,
			"session_db", cfg.SessionDBPath,
			"session_resumed", sess.Authenticated())

		return &Result{Backend: client, Cleanup: store.Close}, nil

	default:
		store := memory.NewFromFiles(cfg.DataDir)
		logger.Info("Initialized memory backend", "data_directory", cfg.DataDir)
		return &Result{Backend: store}, nil
	}
}
