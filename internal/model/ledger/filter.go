package ledger

import (
	"strings"

	"github.com/kakeibo-dev/ledger/internal/entity/record"
)

// Filter narrows a listing. Zero fields match everything.
type Filter struct {
	Month    string // "YYYY-MM" date prefix
	Category string
	Method   string
	Query    string // case-insensitive substring over category+memo+partner
}

func (f Filter) Matches(rec record.Record) bool {
	if f.Month != "" && !strings.HasPrefix(rec.Date, f.Month) {
		return false
	}
	if f.Category != "" && rec.Category != f.Category {
		return false
	}
	if f.Method != "" && rec.Method != f.Method {
		return false
	}
	if f.Query != "" {
		haystack := strings.ToLower(rec.Category + " " + rec.Memo + " " + rec.Partner)
		if !strings.Contains(haystack, strings.ToLower(f.Query)) {
			return false
		}
	}
	return true
}
