// Package file keeps pool state in a JSON file and records in a JSONL log.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/fleshka4/ammpool/internal/model"
	"github.com/fleshka4/ammpool/internal/storage"
)

const (
	stateFile   = "state.json"
	recordsFile = "records.jsonl"

	maxRecordLine = 1 << 20
)

// Store writes into a single directory. State is replaced atomically through
// a temporary file; records are appended.
type Store struct {
	dir string
	mu  sync.Mutex
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("storage path is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "os.MkdirAll")
	}
	return &Store{dir: dir}, nil
}

func (s *Store) SaveState(_ context.Context, state model.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "json.Marshal")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, stateFile)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return errors.Wrap(err, "write state tmp")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrap(err, "rename state")
	}
	return nil
}

func (s *Store) LoadState(_ context.Context) (*model.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, stateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "read state")
	}

	var state model.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, "parse state")
	}
	return &state, nil
}

func (s *Store) AppendRecords(_ context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(filepath.Join(s.dir, recordsFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrap(err, "open records file")
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return errors.Wrap(err, "marshal record")
		}
		if _, err := writer.Write(line); err != nil {
			return errors.Wrap(err, "write record")
		}
		if err := writer.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "write newline")
		}
	}

	if err := writer.Flush(); err != nil {
		return errors.Wrap(err, "flush records")
	}
	return file.Sync()
}

func (s *Store) LoadRecords(_ context.Context, from uint64, limit int) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(filepath.Join(s.dir, recordsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "open records file")
	}
	defer file.Close()

	var out []model.Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordLine)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var record model.Record
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return nil, errors.Wrap(err, "parse record")
		}
		if record.Seq < from {
			continue
		}
		out = append(out, record)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan records")
	}
	return out, nil
}

func (s *Store) Close() error {
	return nil
}
