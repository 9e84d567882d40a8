package database

import (
	"context"
	"log/slog"
	"sync"

	"dogpark/internal/config"
	"dogpark/internal/middleware"
	"dogpark/internal/models"

	"gorm.io/gorm"
)

// Handle is the process-wide, lazily established storage connection. A failed
// connect leaves the handle unavailable; the next Get tries again without backoff.
type Handle struct {
	mu   sync.Mutex
	db   *gorm.DB
	open func() (*gorm.DB, error)
}

// NewHandle returns a handle that connects with cfg on first use.
func NewHandle(cfg *config.Config) *Handle {
	return &Handle{open: func() (*gorm.DB, error) { return Connect(cfg) }}
}

// NewHandleWithOpener returns a handle backed by a custom connect function.
func NewHandleWithOpener(open func() (*gorm.DB, error)) *Handle {
	return &Handle{open: open}
}

// NewStaticHandle wraps an already open connection.
func NewStaticHandle(db *gorm.DB) *Handle {
	return &Handle{db: db}
}

// Get returns the connection or models.ErrDatabaseUnavailable.
func (h *Handle) Get(ctx context.Context) (*gorm.DB, error) {
	if h == nil {
		return nil, models.ErrDatabaseUnavailable
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db != nil {
		return h.db, nil
	}
	if h.open == nil {
		return nil, models.ErrDatabaseUnavailable
	}
	db, err := h.open()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "Database unavailable", slog.String("error", err.Error()))
		return nil, models.NewUnavailableError(err)
	}
	h.db = db
	return db, nil
}

// Current returns the connection if it has been established, without connecting.
func (h *Handle) Current() *gorm.DB {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.db
}

// Close releases the connection if one was established.
func (h *Handle) Close() error {
	db := h.Current()
	if db == nil {
		return nil
	}
	return Close(db)
}
