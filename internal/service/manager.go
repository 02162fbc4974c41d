package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MKhiriev/dashkeys/internal/crypto"
	"github.com/MKhiriev/dashkeys/internal/logger"
	"github.com/MKhiriev/dashkeys/internal/store"
)

// DefaultKeyPrefix namespaces envelopes in a storage shared with other data.
const DefaultKeyPrefix = "secure-credential-"

type credentialManager struct {
	storage        store.KeyValueStorage
	keychain       crypto.KeyChainService
	prefix         string
	purgeMalformed bool
	metrics        *Metrics
	logger         *logger.Logger

	mu     sync.Mutex
	stores map[string]CredentialStore
}

// ManagerOptions configures a [CredentialManager]. An empty Prefix means
// [DefaultKeyPrefix].
type ManagerOptions struct {
	Prefix         string
	PurgeMalformed bool
	Metrics        *Metrics
	Logger         *logger.Logger
}

func NewCredentialManager(storage store.KeyValueStorage, keychain crypto.KeyChainService, opts ManagerOptions) CredentialManager {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &credentialManager{
		storage:        storage,
		keychain:       keychain,
		prefix:         prefix,
		purgeMalformed: opts.PurgeMalformed,
		metrics:        opts.Metrics,
		logger:         log,
		stores:         make(map[string]CredentialStore),
	}
}

func (m *credentialManager) Prefix() string {
	return m.prefix
}

func (m *credentialManager) For(service string) (CredentialStore, error) {
	service = strings.TrimSpace(service)
	if service == "" {
		return nil, ErrEmptyServiceName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[service]; ok {
		return s, nil
	}
	s := NewCredentialStore(m.storage, m.keychain, CredentialStoreOptions{
		Service:        service,
		StorageKey:     m.prefix + service,
		PurgeMalformed: m.purgeMalformed,
		Metrics:        m.metrics,
		Logger:         m.logger,
	})
	m.stores[service] = s
	return s, nil
}

func (m *credentialManager) List(ctx context.Context) ([]string, error) {
	keys, err := m.storage.Keys(ctx, m.prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	services := make([]string, 0, len(keys))
	for _, key := range keys {
		raw, ok, err := m.storage.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorage, err)
		}
		if !ok {
			continue
		}
		if _, _, _, err = decodeRecord(raw); err != nil {
			m.logger.Debug().Str("key", key).Msg("skipping malformed credential record")
			continue
		}
		services = append(services, strings.TrimPrefix(key, m.prefix))
	}
	return services, nil
}
