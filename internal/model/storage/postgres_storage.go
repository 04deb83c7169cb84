package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	// postgres driver
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kakeibo-dev/ledger/internal/entity/record"
	"github.com/kakeibo-dev/ledger/internal/logger"
)

const dsnTemplate = "user=%s password=%s host=%s dbname=%s sslmode=disable"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var recordColumns = []string{
	"id", "date", "type", "category", "partner", "method", "currency",
	"amount_local", "amount_foreign", "fx_rate", "memo",
	"attachment_file_id", "attachment_file_name", "attachment_file_url", "attachment_preview_url",
}

type postgresConfig interface {
	Host() string
	Username() string
	Password() string
	Database() string
}

// PostgresStorage keeps the collection in a records table with the same
// overwrite-on-save semantics as the file blob.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config postgresConfig) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", fmt.Sprintf(dsnTemplate,
		config.Username(),
		config.Password(),
		config.Host(),
		config.Database()))
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	return &PostgresStorage{db}, nil
}

func (s *PostgresStorage) Load(ctx context.Context) ([]record.Record, error) {
	query := psql.Select(recordColumns...).
		From("records").
		OrderBy("date")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load records")
	}
	defer func() {
		if rowErr := rows.Close(); rowErr != nil {
			logger.Warn("error closing rows", zap.Error(rowErr))
		}
	}()

	records := make([]record.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "load records")
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "load records")
	}

	return records, nil
}

func (s *PostgresStorage) Save(ctx context.Context, records []record.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "save records")
	}
	defer func() {
		if txErr := tx.Rollback(); txErr != nil && !errors.Is(txErr, sql.ErrTxDone) {
			logger.Warn("error when transaction rollback", zap.Error(txErr))
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return errors.Wrap(err, "save records")
	}

	for _, rec := range records {
		query := psql.Insert("records").
			Columns(recordColumns...).
			Values(insertValues(rec)...)
		if _, err = query.RunWith(tx).ExecContext(ctx); err != nil {
			return errors.Wrap(err, "save records")
		}
	}

	return tx.Commit()
}

func insertValues(rec record.Record) []interface{} {
	var fileID, fileName, fileURL, previewURL sql.NullString
	if rec.Attachment != nil {
		fileID = sql.NullString{String: rec.Attachment.FileID, Valid: true}
		fileName = sql.NullString{String: rec.Attachment.FileName, Valid: true}
		fileURL = sql.NullString{String: rec.Attachment.FileURL, Valid: true}
		previewURL = sql.NullString{String: rec.Attachment.PreviewURL, Valid: true}
	}
	return []interface{}{
		rec.ID, rec.Date, string(rec.Type), rec.Category, rec.Partner, rec.Method, rec.Currency,
		rec.AmountLocal, rec.AmountForeign.String(), rec.FxRate.String(), rec.Memo,
		fileID, fileName, fileURL, previewURL,
	}
}

func scanRecord(rows *sql.Rows) (record.Record, error) {
	var (
		rec                                record.Record
		typ, amountForeign, fxRate         string
		fileID, fileName, fileURL, prevURL sql.NullString
	)
	err := rows.Scan(
		&rec.ID, &rec.Date, &typ, &rec.Category, &rec.Partner, &rec.Method, &rec.Currency,
		&rec.AmountLocal, &amountForeign, &fxRate, &rec.Memo,
		&fileID, &fileName, &fileURL, &prevURL,
	)
	if err != nil {
		return record.Record{}, err
	}

	rec.Type = record.Type(typ)
	if rec.AmountForeign, err = decimal.NewFromString(amountForeign); err != nil {
		return record.Record{}, errors.Wrap(err, "parse amount_foreign")
	}
	if rec.FxRate, err = decimal.NewFromString(fxRate); err != nil {
		return record.Record{}, errors.Wrap(err, "parse fx_rate")
	}

	if fileID.Valid {
		rec.Attachment = &record.Attachment{
			FileID:     fileID.String,
			FileName:   fileName.String,
			FileURL:    fileURL.String,
			PreviewURL: prevURL.String,
		}
	}
	return rec, nil
}
