package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/dashkeys/internal/config"
	"github.com/MKhiriev/dashkeys/internal/crypto"
	"github.com/MKhiriev/dashkeys/internal/logger"
	"github.com/MKhiriev/dashkeys/internal/store"
)

type Services struct {
	Keychain    crypto.KeyChainService
	Credentials CredentialManager
	Metrics     *Metrics
}

// NewServices wires the keychain and the credential manager over storage.
// Metrics are registered with reg when it is not nil.
func NewServices(cfg *config.StructuredConfig, storage store.KeyValueStorage, probe crypto.EnvironmentProbe, reg prometheus.Registerer, log *logger.Logger) (*Services, error) {
	keychain, err := crypto.NewKeyChainService(cfg.Crypto, probe)
	if err != nil {
		return nil, err
	}

	metrics, err := NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	manager := NewCredentialManager(storage, keychain, ManagerOptions{
		Prefix:         cfg.App.KeyPrefix,
		PurgeMalformed: !cfg.App.KeepsMalformed(),
		Metrics:        metrics,
		Logger:         log,
	})

	return &Services{
		Keychain:    keychain,
		Credentials: manager,
		Metrics:     metrics,
	}, nil
}
