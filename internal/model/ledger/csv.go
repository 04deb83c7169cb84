package ledger

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/kakeibo-dev/ledger/internal/entity/record"
)

// Header is the fixed CSV column order of an export.
const Header = "id,date,category,type,amount_local,currency,amount_foreign,fx_rate,method,memo,attachment_name,attachment_url"

const numFields = 12

// WriteCSV writes one row per record in Header order, preceded by the
// header row. encoding/csv handles quoting of embedded commas and quotes.
func WriteCSV(w io.Writer, records []record.Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for _, rec := range records {
		if err := cw.Write(marshalRecord(rec)); err != nil {
			return errors.Wrap(err, "writing row")
		}
	}
	return cw.Error()
}

func marshalRecord(rec record.Record) []string {
	row := make([]string, 0, numFields)
	row = append(row,
		rec.ID,
		rec.Date,
		rec.Category,
		string(rec.Type),
		strconv.FormatInt(rec.AmountLocal, 10),
		rec.Currency,
		rec.AmountForeign.String(),
		rec.FxRate.String(),
		rec.Method,
		rec.Memo,
	)
	if rec.Attachment != nil {
		row = append(row, rec.Attachment.FileName, rec.Attachment.FileURL)
	} else {
		row = append(row, "", "")
	}
	return row
}
