// Package postgres persists pool state and records in Postgres.
package postgres

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/fleshka4/ammpool/internal/model"
	"github.com/fleshka4/ammpool/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS pool_state (
	pool_address TEXT PRIMARY KEY,
	state        JSONB NOT NULL,
	next_seq     BIGINT NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pool_records (
	pool_address TEXT NOT NULL,
	seq          BIGINT NOT NULL,
	kind         TEXT NOT NULL,
	ts           TIMESTAMPTZ NOT NULL,
	payload      JSONB NOT NULL,
	PRIMARY KEY (pool_address, seq)
);
`

// Store keeps the state of one pool address.
type Store struct {
	pool *pgxpool.Pool
	addr string
}

func NewStore(ctx context.Context, dsn string, poolAddress common.Address) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "pgxpool.New")
	}

	s := &Store{pool: pool, addr: strings.ToLower(poolAddress.Hex())}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the tables if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "create schema")
	}
	return nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) SaveState(ctx context.Context, state model.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "json.Marshal")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO pool_state (pool_address, state, next_seq, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (pool_address)
		DO UPDATE SET
			state = EXCLUDED.state,
			next_seq = EXCLUDED.next_seq,
			updated_at = now()
	`, s.addr, data, int64(state.NextSeq))
	if err != nil {
		return errors.Wrap(err, "upsert pool_state")
	}
	return nil
}

func (s *Store) LoadState(ctx context.Context) (*model.State, error) {
	var data []byte
	row := s.pool.QueryRow(ctx, `SELECT state FROM pool_state WHERE pool_address=$1`, s.addr)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "select pool_state")
	}

	var state model.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, "parse state")
	}
	return &state, nil
}

func (s *Store) AppendRecords(ctx context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return errors.Wrap(err, "marshal record")
		}
		batch.Queue(`
			INSERT INTO pool_records (pool_address, seq, kind, ts, payload)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (pool_address, seq) DO NOTHING
		`, s.addr, int64(r.Seq), string(r.Kind), r.Timestamp, payload)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return errors.Wrap(err, "insert pool_records")
		}
	}
	return nil
}

func (s *Store) LoadRecords(ctx context.Context, from uint64, limit int) ([]model.Record, error) {
	query := `SELECT payload FROM pool_records WHERE pool_address=$1 AND seq >= $2 ORDER BY seq`
	args := []any{s.addr, int64(from)}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select pool_records")
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.Wrap(err, "scan pool_records")
		}
		var r model.Record
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, errors.Wrap(err, "parse record")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate pool_records")
	}
	return out, nil
}
