// Package storage defines where pool state and the record log are persisted.
package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/fleshka4/ammpool/internal/model"
)

// ErrNotFound is returned by LoadState when nothing was saved yet.
var ErrNotFound = errors.New("state not found")

// Store persists pool state and its append-only record log.
type Store interface {
	SaveState(ctx context.Context, state model.State) error
	LoadState(ctx context.Context) (*model.State, error)
	AppendRecords(ctx context.Context, records []model.Record) error
	// LoadRecords returns up to limit records with Seq >= from ordered by Seq.
	// A non-positive limit means no limit.
	LoadRecords(ctx context.Context, from uint64, limit int) ([]model.Record, error)
	Close() error
}

// Nop discards everything. It backs the "none" storage driver.
type Nop struct{}

func (Nop) SaveState(context.Context, model.State) error { return nil }

func (Nop) LoadState(context.Context) (*model.State, error) { return nil, ErrNotFound }

func (Nop) AppendRecords(context.Context, []model.Record) error { return nil }

func (Nop) LoadRecords(context.Context, uint64, int) ([]model.Record, error) { return nil, nil }

func (Nop) Close() error { return nil }
