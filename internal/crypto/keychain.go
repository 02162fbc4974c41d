// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MKhiriev/dashkeys/internal/config"
)

// keyChainService is the private implementation of [KeyChainService].
type keyChainService struct {
	probe  EnvironmentProbe
	kdf    kdfFunc
	random io.Reader
}

// NewKeyChainService builds a [KeyChainService] for the configured KDF.
// probe is the source of device attributes; device overrides from cfg are
// layered on top of it. A nil probe means [HostProbe].
func NewKeyChainService(cfg config.Crypto, probe EnvironmentProbe) (KeyChainService, error) {
	kdf, err := newKDF(cfg)
	if err != nil {
		return nil, err
	}

	probe, err = DeviceProbe(cfg.Device, probe)
	if err != nil {
		return nil, err
	}

	return &keyChainService{
		probe:  probe,
		kdf:    kdf,
		random: randReader,
	}, nil
}

// Fingerprint implements [KeyChainService].
func (k *keyChainService) Fingerprint() string {
	return Fingerprint(k.probe.Probe())
}

// DeviceProbe returns base with the non-empty attributes of d layered on
// top. A nil base means [HostProbe].
func DeviceProbe(d config.Device, base EnvironmentProbe) (EnvironmentProbe, error) {
	if base == nil {
		base = HostProbe{}
	}
	overrides, err := deviceOverrides(d)
	if err != nil {
		return nil, err
	}
	if overrides == (Environment{}) {
		return base, nil
	}
	return OverrideProbe{Base: base, Overrides: overrides}, nil
}

func deviceOverrides(d config.Device) (Environment, error) {
	env := Environment{
		UserAgent: d.UserAgent,
		Language:  d.Language,
		Platform:  d.Platform,
	}
	if d.Screen == "" {
		return env, nil
	}

	w, h, ok := strings.Cut(strings.ToLower(d.Screen), "x")
	if !ok {
		return Environment{}, fmt.Errorf("device screen must look like 1920x1080, got %q", d.Screen)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return Environment{}, fmt.Errorf("device screen width: %w", err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return Environment{}, fmt.Errorf("device screen height: %w", err)
	}
	env.ScreenWidth, env.ScreenHeight = width, height

	return env, nil
}
