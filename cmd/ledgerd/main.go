package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"

	"github.com/kakeibo-dev/ledger/internal/clients/cache"
	"github.com/kakeibo-dev/ledger/internal/clients/drive"
	"github.com/kakeibo-dev/ledger/internal/clients/rates"
	"github.com/kakeibo-dev/ledger/internal/config"
	"github.com/kakeibo-dev/ledger/internal/entity/record"
	"github.com/kakeibo-dev/ledger/internal/logger"
	"github.com/kakeibo-dev/ledger/internal/model/ledger"
	ratesmodel "github.com/kakeibo-dev/ledger/internal/model/rates"
	"github.com/kakeibo-dev/ledger/internal/model/storage"
	"github.com/kakeibo-dev/ledger/internal/server"
	"github.com/kakeibo-dev/ledger/internal/tracing"
	"github.com/kakeibo-dev/ledger/internal/utils"
)

const serviceName = "ledgerd"

type ledgerStorage interface {
	Load(ctx context.Context) ([]record.Record, error)
	Save(ctx context.Context, records []record.Record) error
}

type rateCache interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

type rateProvider interface {
	HistoricalRate(ctx context.Context, code, date string) (float64, error)
	LatestRate(ctx context.Context, code string) (float64, error)
}

type attachmentGateway interface {
	Upload(ctx context.Context, name string, content io.Reader) (record.Attachment, error)
	Delete(ctx context.Context, fileID string)
}

// resolverConfig joins the two config sections the resolver reads from.
type resolverConfig struct {
	*config.AppConfig
	*config.RatesConfig
}

func newResolverConfig(conf *config.Service) resolverConfig {
	return resolverConfig{conf.App(), conf.Rates()}
}

func main() {
	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config", zap.Error(err))
	}

	closer, err := tracing.Init(serviceName)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	store := ledger.NewStore(ctx, conf.App(), newRecordStorage(conf))
	resolver := ratesmodel.NewResolver(
		newResolverConfig(conf),
		newRateCache(conf),
		rates.NewFrankfurter(conf.Rates(), conf.App().LocalCurrency()),
		newSecondaryProvider(conf),
	)

	srv := server.New(conf.Server(), store, resolver, newAttachmentGateway(ctx, conf))
	if err = srv.Run(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newRecordStorage(conf *config.Service) ledgerStorage {
	backend := conf.Storage().Backend()
	if !utils.Contains([]string{config.BackendFile, config.BackendPostgres}, backend) {
		logger.Fatal("unknown storage backend", zap.String("backend", backend))
	}

	if backend == config.BackendPostgres {
		db, err := storage.NewPostgresStorage(conf.Postgres())
		if err != nil {
			logger.Fatal("failed to init postgres", zap.Error(err))
		}
		return db
	}
	return storage.NewFileStorage(conf.Storage())
}

func newRateCache(conf *config.Service) rateCache {
	if len(conf.Memcached().Hosts()) == 0 {
		return cache.NewInMem()
	}
	mc, err := cache.NewMemcache(conf.Memcached())
	if err != nil {
		logger.Fatal("failed to init memcached", zap.Error(err))
	}
	return mc
}

func newSecondaryProvider(conf *config.Service) rateProvider {
	if conf.Rates().SecondaryApiKey() == "" {
		return nil
	}
	return rates.NewFixer(conf.Rates(), conf.App().LocalCurrency())
}

// newAttachmentGateway builds the Drive client from the configured refresh
// token. Without Drive credentials the service still runs; records are then
// saved without attachments.
func newAttachmentGateway(ctx context.Context, conf *config.Service) attachmentGateway {
	if !conf.Drive().Enabled() {
		logger.Info("drive uploads disabled, no credentials configured")
		return nil
	}

	oauthConf := &oauth2.Config{
		ClientID:     conf.Drive().ClientID(),
		ClientSecret: conf.Drive().ClientSecret(),
		Endpoint:     google.Endpoint,
		Scopes:       []string{gdrive.DriveFileScope},
	}
	tokenSource := oauthConf.TokenSource(ctx, &oauth2.Token{RefreshToken: conf.Drive().RefreshToken()})

	client, err := drive.New(ctx, tokenSource, conf.Drive())
	if err != nil {
		logger.Fatal("failed to init drive client", zap.Error(err))
	}
	return client
}
