package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kakeibo-dev/ledger/internal/entity/record"
	"github.com/kakeibo-dev/ledger/internal/logger"
	"github.com/kakeibo-dev/ledger/internal/model/ledger"
)

const shutdownTimeout = 5 * time.Second

type attachmentGateway interface {
	Upload(ctx context.Context, name string, content io.Reader) (record.Attachment, error)
	Delete(ctx context.Context, fileID string)
}

type rateResolver interface {
	ResolveRate(ctx context.Context, code, date string) (float64, error)
}

type config interface {
	Port() int
}

type Server struct {
	store    *ledger.Store
	resolver rateResolver
	gateway  attachmentGateway
	engine   *gin.Engine
	port     int
}

// New builds the HTTP surface over the store. gateway may be nil when no
// file hosting is configured; uploads then fail without blocking plain
// record saves.
func New(config config, store *ledger.Store, resolver rateResolver, gateway attachmentGateway) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestObserver())

	s := &Server{
		store:    store,
		resolver: resolver,
		gateway:  gateway,
		engine:   engine,
		port:     config.Port(),
	}

	api := engine.Group("/api")
	api.GET("/records", s.handleList)
	api.POST("/records", s.handleCreate)
	api.PUT("/records/:id", s.handleUpdate)
	api.DELETE("/records/:id", s.handleDelete)
	api.GET("/reports/monthly", s.handleMonthlyReport)
	api.GET("/reports/yearly", s.handleYearlyReport)
	api.GET("/export/csv", s.handleExportCSV)
	api.GET("/rates/:code", s.handleRate)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("http server listening", zap.Int("port", s.port))
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrap(err, "serve http")
}

// requestObserver traces, times and logs every request.
func requestObserver() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "http "+c.FullPath())
		defer span.Finish()
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		observeRequest(c.FullPath(), status, elapsed)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		)
	}
}
