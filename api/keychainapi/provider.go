package keychainapi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ruteri/djilog-keychain/api"
	"github.com/ruteri/djilog-keychain/interfaces"
	"github.com/ruteri/djilog-keychain/keychain"
	"github.com/ruteri/djilog-keychain/storage"
)

// Provider serves keychains from a cache, falling back to a key service.
// Both the cache and the upstream are optional, but a request that neither
// can answer fails with ErrInvalidDecryptMethod.
type Provider struct {
	upstream api.KeychainProvider
	cache    interfaces.StorageBackend
	log      *slog.Logger
}

func NewProvider(upstream api.KeychainProvider, cache interfaces.StorageBackend, log *slog.Logger) *Provider {
	if log == nil {
		log = slog.Default()
	}
	return &Provider{upstream: upstream, cache: cache, log: log}
}

// FetchKeychains implements api.KeychainProvider.
func (p *Provider) FetchKeychains(ctx context.Context, apiKey string, req *api.KeychainsRequest) ([][]interfaces.KeychainEntry, error) {
	id, err := req.RequestID()
	if err != nil {
		return nil, err
	}

	if entries, ok := p.fromCache(ctx, id); ok {
		return entries, nil
	}

	if apiKey == "" || p.upstream == nil {
		return nil, interfaces.NewInvalidDecryptMethodError()
	}

	entries, err := p.upstream.FetchKeychains(ctx, apiKey, req)
	if err != nil {
		return nil, err
	}

	p.toCache(ctx, id, entries)
	return entries, nil
}

// Keychains returns one Keychain per requested keychain, in request order.
func (p *Provider) Keychains(ctx context.Context, apiKey string, req *api.KeychainsRequest) ([]*keychain.Keychain, error) {
	entries, err := p.FetchKeychains(ctx, apiKey, req)
	if err != nil {
		return nil, err
	}

	keychains := make([]*keychain.Keychain, 0, len(entries))
	for _, group := range entries {
		keychains = append(keychains, keychain.FromEntries(group))
	}
	return keychains, nil
}

func (p *Provider) fromCache(ctx context.Context, id interfaces.KeychainID) ([][]interfaces.KeychainEntry, bool) {
	if p.cache == nil {
		return nil, false
	}

	data, err := p.cache.Fetch(ctx, id)
	if err != nil {
		if !errors.Is(err, interfaces.ErrContentNotFound) {
			p.log.Warn("keychain cache read failed", "keychainID", id.String(), "err", err)
		}
		return nil, false
	}

	entries, err := storage.DecodeKeychains(data)
	if err != nil {
		p.log.Warn("ignoring corrupt cached keychain", "keychainID", id.String(), "err", err)
		return nil, false
	}

	p.log.Debug("keychain cache hit", "keychainID", id.String(), "backend", p.cache.Name())
	return entries, true
}

func (p *Provider) toCache(ctx context.Context, id interfaces.KeychainID, entries [][]interfaces.KeychainEntry) {
	if p.cache == nil {
		return
	}

	data, err := storage.EncodeKeychains(entries)
	if err != nil {
		p.log.Warn("could not encode keychain for cache", "keychainID", id.String(), "err", err)
		return
	}

	if err := p.cache.Store(ctx, id, data); err != nil {
		p.log.Warn("keychain cache write failed", "keychainID", id.String(), "err", err)
	}
}
