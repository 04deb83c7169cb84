package cache

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kakeibo-dev/ledger/internal/logger"
)

type config interface {
	Hosts() []string
}

// MemcacheClient stores rate-cache blobs keyed per (currency, date).
type MemcacheClient struct {
	client *memcache.Client
}

func NewMemcache(config config) (*MemcacheClient, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	return &MemcacheClient{mc}, mc.Ping()
}

func (mc *MemcacheClient) Get(key string) ([]byte, bool, error) {
	item, err := mc.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item.Value, true, nil
}

func (mc *MemcacheClient) Set(key string, value []byte) error {
	return mc.client.Set(&memcache.Item{
		Key:   key,
		Value: value,
	})
}
