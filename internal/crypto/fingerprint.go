// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	fingerprintDelimiter = "|"

	fallbackUnknown  = "unknown"
	fallbackLanguage = "en-US"
	fallbackCPUCount = 4
)

// Environment is the set of device attributes a fingerprint is computed from.
// It is not secret. Changing any attribute changes the fingerprint and makes
// every envelope stored under the old one undecryptable.
type Environment struct {
	UserAgent      string
	Language       string
	ScreenWidth    int
	ScreenHeight   int
	TimezoneOffset int // minutes east of UTC
	CPUCount       int
	Platform       string
	Hostname       string
	MachineID      string
}

// Fingerprint joins the attributes of env in a fixed order and returns the
// base64 SHA-256 digest of the result. Empty attributes are replaced by
// fallback constants, so the function is total.
func Fingerprint(env Environment) string {
	cpu := env.CPUCount
	if cpu <= 0 {
		cpu = fallbackCPUCount
	}

	parts := []string{
		orFallback(env.UserAgent, fallbackUnknown),
		orFallback(env.Language, fallbackLanguage),
		fmt.Sprintf("%dx%d", env.ScreenWidth, env.ScreenHeight),
		strconv.Itoa(env.TimezoneOffset),
		strconv.Itoa(cpu),
		orFallback(env.Platform, fallbackUnknown),
		orFallback(env.Hostname, fallbackUnknown),
		orFallback(env.MachineID, fallbackUnknown),
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, fingerprintDelimiter)))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func orFallback(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

// HostProbe reads the environment of the machine the process runs on.
type HostProbe struct {
	// ReadFile is used for machine-id lookups; os.ReadFile when nil.
	ReadFile func(name string) ([]byte, error)
	// Getenv is used for locale lookups; os.Getenv when nil.
	Getenv func(key string) string
}

// machineIDPaths are tried in order; the first non-empty one wins.
var machineIDPaths = []string{"/etc/machine-id", "/var/lib/dbus/machine-id"}

// tzReference is a fixed instant so that DST transitions do not move the offset.
var tzReference = time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)

// Probe implements [EnvironmentProbe].
func (p HostProbe) Probe() Environment {
	_, offset := tzReference.In(time.Local).Zone()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = ""
	}

	// a headless host has no screen; 0x0 is the stable fallback
	return Environment{
		UserAgent:      fmt.Sprintf("dashkeys (%s; %s)", runtime.GOOS, runtime.GOARCH),
		Language:       p.language(),
		TimezoneOffset: offset / 60,
		CPUCount:       runtime.NumCPU(),
		Platform:       runtime.GOOS + "/" + runtime.GOARCH,
		Hostname:       hostname,
		MachineID:      p.machineID(),
	}
}

func (p HostProbe) language() string {
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		// en_US.UTF-8 -> en-US
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return ""
}

func (p HostProbe) machineID() string {
	readFile := p.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	for _, path := range machineIDPaths {
		data, err := readFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}
	return ""
}

// StaticProbe always reports the same environment. Embedders that already
// know the real device attributes use it, and so do tests.
type StaticProbe Environment

// Probe implements [EnvironmentProbe].
func (s StaticProbe) Probe() Environment {
	return Environment(s)
}

// OverrideProbe reports Base's environment with every non-zero field of
// Overrides taking precedence.
type OverrideProbe struct {
	Base      EnvironmentProbe
	Overrides Environment
}

// Probe implements [EnvironmentProbe].
func (o OverrideProbe) Probe() Environment {
	env := o.Base.Probe()
	ov := o.Overrides

	if ov.UserAgent != "" {
		env.UserAgent = ov.UserAgent
	}
	if ov.Language != "" {
		env.Language = ov.Language
	}
	if ov.ScreenWidth != 0 || ov.ScreenHeight != 0 {
		env.ScreenWidth, env.ScreenHeight = ov.ScreenWidth, ov.ScreenHeight
	}
	if ov.TimezoneOffset != 0 {
		env.TimezoneOffset = ov.TimezoneOffset
	}
	if ov.CPUCount != 0 {
		env.CPUCount = ov.CPUCount
	}
	if ov.Platform != "" {
		env.Platform = ov.Platform
	}
	if ov.Hostname != "" {
		env.Hostname = ov.Hostname
	}
	if ov.MachineID != "" {
		env.MachineID = ov.MachineID
	}
	return env
}
