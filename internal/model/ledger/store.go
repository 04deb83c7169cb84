package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kakeibo-dev/ledger/internal/entity/record"
	"github.com/kakeibo-dev/ledger/internal/logger"
	"github.com/kakeibo-dev/ledger/internal/model/customerr"
)

type recordStorage interface {
	Load(ctx context.Context) ([]record.Record, error)
	Save(ctx context.Context, records []record.Record) error
}

type config interface {
	LocalCurrency() string
}

// Draft carries the user-entered fields of a record. On update a nil
// Attachment keeps the existing one; a non-nil Attachment supersedes it.
type Draft struct {
	Date          string
	Type          string
	Category      string
	Partner       string
	Method        string
	Currency      string
	AmountLocal   int64
	AmountForeign decimal.Decimal
	FxRate        decimal.Decimal
	Memo          string
	Attachment    *record.Attachment
}

// Store owns the ordered collection of records and its persistence. The
// collection is loaded once at construction and rewritten in full after
// every mutation. A single mutex serializes mutations, which is the only
// concurrency control a one-collection server needs.
type Store struct {
	mu      sync.Mutex
	storage recordStorage
	local   string
	records []record.Record
}

func NewStore(ctx context.Context, config config, storage recordStorage) *Store {
	records, err := storage.Load(ctx)
	if err != nil {
		logger.Warn("cannot load records, starting empty", zap.Error(err))
		records = []record.Record{}
	}
	return &Store{
		storage: storage,
		local:   config.LocalCurrency(),
		records: records,
	}
}

// Add validates, normalizes and appends a new record, then persists the
// collection. No state changes on any error.
func (s *Store) Add(ctx context.Context, draft Draft) (record.Record, error) {
	rec, err := s.build(draft, uuid.NewString())
	if err != nil {
		return record.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	if err = s.persist(ctx); err != nil {
		s.records = s.records[:len(s.records)-1]
		return record.Record{}, err
	}
	return rec, nil
}

// Update replaces all mutable fields of the record with the given id. The
// id itself is immutable, and the existing attachment survives unless the
// draft carries a replacement.
func (s *Store) Update(ctx context.Context, id string, draft Draft) (record.Record, error) {
	rec, err := s.build(draft, id)
	if err != nil {
		return record.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return record.Record{}, &customerr.NotFoundError{ID: id}
	}

	prev := s.records[idx]
	if rec.Attachment == nil {
		rec.Attachment = prev.Attachment
	}

	s.records[idx] = rec
	if err = s.persist(ctx); err != nil {
		s.records[idx] = prev
		return record.Record{}, err
	}
	return rec, nil
}

// Remove deletes the record with the given id and reports whether one was
// found. The removed record is returned so the caller can clean up its
// remote attachment.
func (s *Store) Remove(ctx context.Context, id string) (record.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return record.Record{}, false, nil
	}

	removed := s.records[idx]
	rest := make([]record.Record, 0, len(s.records)-1)
	rest = append(rest, s.records[:idx]...)
	rest = append(rest, s.records[idx+1:]...)

	prev := s.records
	s.records = rest
	if err := s.persist(ctx); err != nil {
		s.records = prev
		return record.Record{}, false, err
	}
	return removed, true, nil
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (record.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return record.Record{}, false
	}
	return s.records[idx], true
}

// List returns the records matching the filter, ascending by date string.
// Dates are kept in zero-padded ISO form so string order is date order.
func (s *Store) List(filter Filter) []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]record.Record, 0, len(s.records))
	for _, rec := range s.records {
		if filter.Matches(rec) {
			res = append(res, rec)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Date < res[j].Date
	})
	return res
}

func (s *Store) indexOf(id string) int {
	for i, rec := range s.records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) error {
	if err := s.storage.Save(ctx, s.records); err != nil {
		return &customerr.PersistenceError{Op: "save records", Err: err}
	}
	return nil
}

// build validates a draft and produces the normalized record. For foreign
// currencies the foreign pair is authoritative and the local amount is
// recomputed; for the local currency the foreign fields are reset so no
// stale values survive an edit.
func (s *Store) build(draft Draft, id string) (record.Record, error) {
	if draft.Date == "" {
		return record.Record{}, &customerr.ValidationError{Field: "date", Reason: "required"}
	}
	if _, err := time.Parse(record.DateLayout, draft.Date); err != nil {
		return record.Record{}, &customerr.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	if draft.Category == "" {
		return record.Record{}, &customerr.ValidationError{Field: "category", Reason: "required"}
	}

	currency := draft.Currency
	if currency == "" {
		currency = s.local
	}

	rec := record.Record{
		ID:         id,
		Date:       draft.Date,
		Type:       record.ClassifyType(draft.Type, draft.Category),
		Category:   draft.Category,
		Partner:    draft.Partner,
		Method:     draft.Method,
		Currency:   currency,
		Memo:       draft.Memo,
		Attachment: draft.Attachment,
	}

	if currency == s.local {
		if draft.AmountLocal == 0 {
			return record.Record{}, &customerr.ValidationError{Field: "amount", Reason: "required"}
		}
		rec.AmountLocal = draft.AmountLocal
		rec.AmountForeign = decimal.Zero
		rec.FxRate = decimal.NewFromInt(1)
		return rec, nil
	}

	if draft.AmountForeign.Sign() <= 0 || draft.FxRate.Sign() <= 0 {
		return record.Record{}, &customerr.ValidationError{Field: "amountFx", Reason: "foreign amount and rate required"}
	}
	rec.AmountForeign = draft.AmountForeign
	rec.FxRate = draft.FxRate
	rec.AmountLocal = draft.AmountForeign.Mul(draft.FxRate).Round(0).IntPart()
	return rec, nil
}
