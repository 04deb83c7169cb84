package storage

import (
	"context"

	"github.com/kakeibo-dev/ledger/internal/entity/record"
)

type InMemStorage struct {
	records []record.Record
}

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{records: []record.Record{}}
}

func (s *InMemStorage) Load(_ context.Context) ([]record.Record, error) {
	res := make([]record.Record, len(s.records))
	copy(res, s.records)
	return res, nil
}

func (s *InMemStorage) Save(_ context.Context, records []record.Record) error {
	s.records = make([]record.Record, len(records))
	copy(s.records, records)
	return nil
}
