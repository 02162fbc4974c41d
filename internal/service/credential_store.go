package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/MKhiriev/dashkeys/internal/crypto"
	"github.com/MKhiriev/dashkeys/internal/envelope"
	"github.com/MKhiriev/dashkeys/internal/logger"
	"github.com/MKhiriev/dashkeys/internal/store"
	"github.com/MKhiriev/dashkeys/models"
)

type credentialStore struct {
	service    string
	storageKey string

	storage        store.KeyValueStorage
	keychain       crypto.KeyChainService
	purgeMalformed bool
	metrics        *Metrics
	logger         *logger.Logger

	mu     sync.Mutex
	status models.CredentialStatus
	err    error
	hasKey bool
	mask   string // computed from plaintext only
	busy   int
}

// CredentialStoreOptions configures a standalone credential store.
type CredentialStoreOptions struct {
	Service    string
	StorageKey string

	// PurgeMalformed removes a stored record that is not a valid envelope
	// when it is read.
	PurgeMalformed bool

	Metrics *Metrics
	Logger  *logger.Logger
}

// NewCredentialStore returns the store for one service. Most callers get
// stores through a [CredentialManager] instead.
func NewCredentialStore(storage store.KeyValueStorage, keychain crypto.KeyChainService, opts CredentialStoreOptions) CredentialStore {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &credentialStore{
		service:        opts.Service,
		storageKey:     opts.StorageKey,
		storage:        storage,
		keychain:       keychain,
		purgeMalformed: opts.PurgeMalformed,
		metrics:        opts.Metrics,
		logger:         log,
		status:         models.StatusEmpty,
	}
}

func (s *credentialStore) Service() string    { return s.service }
func (s *credentialStore) StorageKey() string { return s.storageKey }

func (s *credentialStore) Load(ctx context.Context) models.CredentialState {
	s.begin()
	hasKey, err := s.IsKeySet(ctx)

	s.finish(func() {
		if err != nil {
			s.err = err
			return
		}
		s.hasKey = hasKey
		s.mask = ""
		s.err = nil
		s.status = statusFor(hasKey)
	})

	return s.State()
}

func (s *credentialStore) Store(ctx context.Context, plaintext string) (err error) {
	ctx, log := s.logger.WithTraceID(ctx)
	defer func() { s.metrics.observe(opStore, err) }()

	if strings.TrimSpace(plaintext) == "" {
		s.record(func() { s.err = ErrEmptyInput })
		return ErrEmptyInput
	}

	// non-empty input is sealed exactly as given
	secret := plaintext
	s.begin()
	if err = s.write(ctx, secret); err != nil {
		log.Err(err).Str("func", "credentialStore.Store").Str("service", s.service).Msg("failed to store credential")
		s.finish(func() { s.err = err })
		return err
	}

	mask := Mask(secret)
	s.finish(func() {
		s.hasKey = true
		s.mask = mask
		s.err = nil
		s.status = models.StatusPresent
	})
	log.Info().Str("service", s.service).Msg("credential stored")
	return nil
}

// write seals secret into a new envelope and replaces the stored record in
// one Set.
func (s *credentialStore) write(ctx context.Context, secret string) error {
	salt, err := s.keychain.GenerateSalt()
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	nonce, err := s.keychain.GenerateNonce()
	if err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	key, err := s.keychain.DeriveKey(s.keychain.Fingerprint(), salt)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	defer crypto.Wipe(key)

	plain := []byte(secret)
	defer crypto.Wipe(plain)

	ciphertext, err := s.keychain.Encrypt(key, nonce, plain)
	if err != nil {
		return fmt.Errorf("encrypt credential: %w", err)
	}

	raw, err := envelope.Marshal(envelope.Encode(ciphertext, nonce, salt))
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	if err = s.storage.Set(ctx, s.storageKey, string(raw)); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

func (s *credentialStore) Retrieve(ctx context.Context) (plaintext string, ok bool, err error) {
	ctx, log := s.logger.WithTraceID(ctx)
	defer func() { s.metrics.observe(opRetrieve, err) }()

	s.begin()

	raw, found, err := s.storage.Get(ctx, s.storageKey)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrStorage, err)
		log.Err(err).Str("func", "credentialStore.Retrieve").Str("service", s.service).Msg("failed to read credential")
		s.finish(func() { s.err = err })
		return "", false, err
	}
	if !found {
		s.finish(func() {
			s.hasKey = false
			s.mask = ""
			s.err = nil
			s.status = models.StatusEmpty
		})
		return "", false, nil
	}

	ciphertext, nonce, salt, err := decodeRecord(raw)
	if err != nil {
		log.Warn().Err(err).Str("service", s.service).Msg("stored credential is malformed")
		s.purge(ctx, log)
		s.finish(func() {
			s.hasKey = false
			s.mask = ""
			s.err = err
			s.status = models.StatusEmpty
		})
		return "", false, err
	}

	plain, err := s.open(ciphertext, nonce, salt)
	if err != nil {
		log.Err(err).Str("func", "credentialStore.Retrieve").Str("service", s.service).Msg("failed to decrypt credential")
		s.finish(func() {
			s.hasKey = true
			s.err = err
			if errors.Is(err, ErrAuthenticationFailure) {
				s.mask = ""
				s.status = models.StatusError
			}
		})
		return "", false, err
	}
	plaintext = string(plain)
	crypto.Wipe(plain)

	mask := Mask(plaintext)
	s.finish(func() {
		s.hasKey = true
		s.mask = mask
		s.err = nil
		s.status = models.StatusPresent
	})
	return plaintext, true, nil
}

// open re-derives the key from the stored salt and the current fingerprint
// and decrypts. The caller wipes the returned slice.
func (s *credentialStore) open(ciphertext, nonce, salt []byte) ([]byte, error) {
	key, err := s.keychain.DeriveKey(s.keychain.Fingerprint(), salt)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer crypto.Wipe(key)

	plain, err := s.keychain.Decrypt(key, nonce, ciphertext)
	if errors.Is(err, crypto.ErrInvalidNonceLength) {
		// a nonce of the wrong size can never authenticate
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailure, err)
	}
	if err != nil {
		return nil, err
	}
	return plain, nil
}

func (s *credentialStore) purge(ctx context.Context, log *logger.Logger) {
	if !s.purgeMalformed {
		return
	}
	if err := s.storage.Remove(ctx, s.storageKey); err != nil {
		log.Err(err).Str("func", "credentialStore.purge").Str("service", s.service).Msg("failed to purge malformed credential")
		return
	}
	log.Info().Str("service", s.service).Msg("malformed credential purged")
}

func (s *credentialStore) Update(ctx context.Context, plaintext string) (err error) {
	defer func() { s.metrics.observe(opUpdate, err) }()

	// reject before the remove step so that bad input never deletes a key
	if strings.TrimSpace(plaintext) == "" {
		s.record(func() { s.err = ErrEmptyInput })
		return ErrEmptyInput
	}

	if err = s.Remove(ctx); err != nil {
		return err
	}
	return s.Store(ctx, plaintext)
}

func (s *credentialStore) Remove(ctx context.Context) (err error) {
	ctx, log := s.logger.WithTraceID(ctx)
	defer func() { s.metrics.observe(opRemove, err) }()

	s.begin()
	if err = s.storage.Remove(ctx, s.storageKey); err != nil {
		err = fmt.Errorf("%w: %w", ErrStorage, err)
		log.Err(err).Str("func", "credentialStore.Remove").Str("service", s.service).Msg("failed to remove credential")
		s.finish(func() { s.err = err })
		return err
	}

	s.finish(func() {
		s.hasKey = false
		s.mask = ""
		s.err = nil
		s.status = models.StatusEmpty
	})
	log.Info().Str("service", s.service).Msg("credential removed")
	return nil
}

func (s *credentialStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = nil
	if s.status == models.StatusError {
		s.status = statusFor(s.hasKey)
	}
}

func (s *credentialStore) IsKeySet(ctx context.Context) (ok bool, err error) {
	defer func() { s.metrics.observe(opIsKeySet, err) }()

	raw, found, err := s.storage.Get(ctx, s.storageKey)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if !found {
		return false, nil
	}
	if _, _, _, err = decodeRecord(raw); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *credentialStore) MaskedKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maskedKey()
}

func (s *credentialStore) maskedKey() string {
	switch {
	case s.mask != "":
		return s.mask
	case s.hasKey:
		return PlaceholderMask
	default:
		return ""
	}
}

func (s *credentialStore) State() models.CredentialState {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := s.status
	if s.busy > 0 {
		status = models.StatusLoading
	}
	return models.CredentialState{
		Service:   s.service,
		Status:    status,
		IsLoading: s.busy > 0,
		Error:     s.err,
		MaskedKey: s.maskedKey(),
		HasKey:    s.hasKey,
	}
}

func (s *credentialStore) begin() {
	s.mu.Lock()
	s.busy++
	s.mu.Unlock()
}

// finish applies fn under the lock and ends the operation started by begin.
func (s *credentialStore) finish(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.busy--
}

// record applies fn under the lock for failures detected before any I/O.
func (s *credentialStore) record(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func decodeRecord(raw string) (ciphertext, nonce, salt []byte, err error) {
	env, err := envelope.DecodeString(raw)
	if err != nil {
		return nil, nil, nil, err
	}
	return env.Bytes()
}

func statusFor(hasKey bool) models.CredentialStatus {
	if hasKey {
		return models.StatusPresent
	}
	return models.StatusEmpty
}
