package server

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/now"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/kakeibo-dev/ledger/internal/entity/record"
	"github.com/kakeibo-dev/ledger/internal/model/customerr"
	"github.com/kakeibo-dev/ledger/internal/model/ledger"
)

func (s *Server) handleList(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.List(filterFromQuery(c)))
}

func (s *Server) handleCreate(c *gin.Context) {
	draft, err := draftFromForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if att, err := s.uploadFormFile(c); err != nil {
		respondError(c, err)
		return
	} else if att != nil {
		draft.Attachment = att
	}

	rec, err := s.store.Add(c.Request.Context(), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleUpdate(c *gin.Context) {
	id := c.Param("id")
	prev, ok := s.store.Get(id)
	if !ok {
		respondError(c, &customerr.NotFoundError{ID: id})
		return
	}

	draft, err := draftFromForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if att, err := s.uploadFormFile(c); err != nil {
		respondError(c, err)
		return
	} else if att != nil {
		draft.Attachment = att
	}

	rec, err := s.store.Update(c.Request.Context(), id, draft)
	if err != nil {
		respondError(c, err)
		return
	}

	// The replaced file is superseded; remote cleanup is best-effort.
	if draft.Attachment != nil && prev.Attachment != nil && s.gateway != nil {
		s.gateway.Delete(c.Request.Context(), prev.Attachment.FileID)
	}

	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDelete(c *gin.Context) {
	id := c.Param("id")
	removed, found, err := s.store.Remove(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		respondError(c, &customerr.NotFoundError{ID: id})
		return
	}

	if removed.Attachment != nil && s.gateway != nil {
		s.gateway.Delete(c.Request.Context(), removed.Attachment.FileID)
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleMonthlyReport(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = now.BeginningOfMonth().Format("2006-01")
	}

	totals := ledger.MonthlyTotals(s.store.List(ledger.Filter{}), month)
	c.JSON(http.StatusOK, gin.H{"month": month, "totals": totals})
}

func (s *Server) handleYearlyReport(c *gin.Context) {
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().Year())))
	if err != nil {
		respondError(c, &customerr.ValidationError{Field: "year", Reason: "must be a number"})
		return
	}

	c.JSON(http.StatusOK, ledger.YearlyTotals(s.store.List(ledger.Filter{}), year))
}

func (s *Server) handleExportCSV(c *gin.Context) {
	records := s.store.List(filterFromQuery(c))

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="records.csv"`)
	if err := ledger.WriteCSV(c.Writer, records); err != nil {
		respondError(c, err)
	}
}

func (s *Server) handleRate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format(record.DateLayout)
	}

	rate, err := s.resolver.ResolveRate(c.Request.Context(), c.Param("code"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"currency": c.Param("code"), "date": date, "rate": rate})
}

func filterFromQuery(c *gin.Context) ledger.Filter {
	return ledger.Filter{
		Month:    c.Query("month"),
		Category: c.Query("category"),
		Method:   c.Query("method"),
		Query:    c.Query("q"),
	}
}

func draftFromForm(c *gin.Context) (ledger.Draft, error) {
	draft := ledger.Draft{
		Date:     c.PostForm("date"),
		Type:     c.PostForm("type"),
		Category: c.PostForm("category"),
		Partner:  c.PostForm("partner"),
		Method:   c.PostForm("method"),
		Currency: c.PostForm("currency"),
		Memo:     c.PostForm("memo"),
	}

	var err error
	if raw := c.PostForm("amount"); raw != "" {
		if draft.AmountLocal, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return ledger.Draft{}, &customerr.ValidationError{Field: "amount", Reason: "must be an integer"}
		}
	}
	if raw := c.PostForm("amountFx"); raw != "" {
		if draft.AmountForeign, err = decimal.NewFromString(raw); err != nil {
			return ledger.Draft{}, &customerr.ValidationError{Field: "amountFx", Reason: "must be a number"}
		}
	}
	if raw := c.PostForm("fxRate"); raw != "" {
		if draft.FxRate, err = decimal.NewFromString(raw); err != nil {
			return ledger.Draft{}, &customerr.ValidationError{Field: "fxRate", Reason: "must be a number"}
		}
	}

	return draft, nil
}

// uploadFormFile pushes the optional "file" form part to the gateway and
// returns its reference, or nil when the form carries no file.
func (s *Server) uploadFormFile(c *gin.Context) (*record.Attachment, error) {
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, &customerr.ValidationError{Field: "file", Reason: err.Error()}
	}

	if s.gateway == nil {
		return nil, &customerr.UploadError{FileName: header.Filename, Err: errors.New("file hosting is not configured")}
	}

	file, err := header.Open()
	if err != nil {
		return nil, &customerr.UploadError{FileName: header.Filename, Err: err}
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	att, err := s.gateway.Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func respondError(c *gin.Context, err error) {
	var (
		validationErr *customerr.ValidationError
		notFoundErr   *customerr.NotFoundError
		rateErr       *customerr.RateUnavailableError
		uploadErr     *customerr.UploadError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
	case errors.As(err, &rateErr), errors.As(err, &uploadErr):
		status = http.StatusBadGateway
	}

	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
