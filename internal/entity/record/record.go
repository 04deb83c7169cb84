package record

import (
	"strings"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Attachment references a file hosted on the remote file service.
// A nil *Attachment on a Record means the record has none.
type Attachment struct {
	FileID     string `json:"fileId"`
	FileName   string `json:"fileName"`
	FileURL    string `json:"fileUrl"`
	PreviewURL string `json:"previewUrl"`
}

// Record is one ledger entry. AmountLocal is the canonical amount in the
// local currency; for foreign-currency records it equals
// round(AmountForeign * FxRate). Local-currency records always carry
// AmountForeign = 0 and FxRate = 1.
type Record struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	Type          Type            `json:"type"`
	Category      string          `json:"category"`
	Partner       string          `json:"partner,omitempty"`
	Method        string          `json:"method,omitempty"`
	Currency      string          `json:"currency"`
	AmountLocal   int64           `json:"amount"`
	AmountForeign decimal.Decimal `json:"amountFx"`
	FxRate        decimal.Decimal `json:"fxRate"`
	Memo          string          `json:"memo,omitempty"`
	Attachment    *Attachment     `json:"attachment,omitempty"`
}

var incomeCategories = []string{
	"income", "sales", "salary", "interest", "refund",
	"収入", "売上", "給与", "雑収入", "利息",
}

// ClassifyType resolves the record type from an explicit selection when
// valid, otherwise from the category text. Unknown categories are expenses.
func ClassifyType(explicit, category string) Type {
	switch Type(explicit) {
	case TypeIncome, TypeExpense:
		return Type(explicit)
	}
	lowered := strings.ToLower(strings.TrimSpace(category))
	for _, c := range incomeCategories {
		if lowered == c {
			return TypeIncome
		}
	}
	return TypeExpense
}
