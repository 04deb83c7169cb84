package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kakeibo-dev/ledger/internal/entity/record"
	"github.com/kakeibo-dev/ledger/internal/logger"
)

type fileConfig interface {
	DataFile() string
}

// FileStorage keeps the whole collection as one JSON blob on disk,
// rewritten in full on every save.
type FileStorage struct {
	path string
}

func NewFileStorage(config fileConfig) *FileStorage {
	return &FileStorage{path: config.DataFile()}
}

// Load reads the blob. A missing or malformed blob yields an empty
// collection, never an error.
func (s *FileStorage) Load(_ context.Context) ([]record.Record, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("cannot read records file", zap.String("path", s.path), zap.Error(err))
		}
		return []record.Record{}, nil
	}

	var records []record.Record
	if err = json.Unmarshal(raw, &records); err != nil {
		logger.Warn("records file is malformed, starting empty", zap.String("path", s.path), zap.Error(err))
		return []record.Record{}, nil
	}
	return records, nil
}

func (s *FileStorage) Save(_ context.Context, records []record.Record) error {
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal records")
	}

	if err = os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "create data dir")
	}
	if err = os.WriteFile(s.path, raw, 0o644); err != nil {
		return errors.Wrap(err, "write records file")
	}
	return nil
}
