// Package localstore is the best-effort durability layer between the
// practice state and the on-disk key/value store.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Backend is the durable medium behind an Adapter.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

const opTimeout = 5 * time.Second

var errNoBackend = errors.New("storage backend unavailable")

// Adapter never reports storage failures to its callers. Failures are
// logged and reads degrade to "missing".
type Adapter struct {
	backend Backend
	logger  *slog.Logger
}

// New wraps backend. A nil backend yields an adapter where every call fails
// quietly.
func New(backend Backend) *Adapter {
	return &Adapter{backend: backend, logger: slog.Default()}
}

// WithLogger returns a copy of the adapter logging to logger.
func (a *Adapter) WithLogger(logger *slog.Logger) *Adapter {
	if logger == nil {
		return a
	}
	return &Adapter{backend: a.backend, logger: logger}
}

// Read returns the value stored under key.
func (a *Adapter) Read(key string) (value string, ok bool) {
	value, ok, err := a.read(key)
	if err != nil {
		return "", false
	}
	return value, ok
}

func (a *Adapter) read(key string) (value string, ok bool, err error) {
	err = a.guard("read", key, func(ctx context.Context) error {
		var gerr error
		value, ok, gerr = a.backend.Get(ctx, key)
		return gerr
	})
	return value, ok, err
}

// Write stores value under key.
func (a *Adapter) Write(key, value string) {
	_ = a.guard("write", key, func(ctx context.Context) error {
		return a.backend.Set(ctx, key, value)
	})
}

// Remove deletes key.
func (a *Adapter) Remove(key string) {
	_ = a.guard("remove", key, func(ctx context.Context) error {
		return a.backend.Delete(ctx, key)
	})
}

func (a *Adapter) guard(op, key string, fn func(ctx context.Context) error) (err error) {
	if a == nil || a.backend == nil {
		return errNoBackend
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("storage panic: %v", r)
			a.logger.Warn("local storage failed", "op", op, "key", key, "error", err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err = fn(ctx); err != nil {
		a.logger.Warn("local storage failed", "op", op, "key", key, "error", err)
	}
	return err
}
