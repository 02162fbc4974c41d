// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the dashkeys command-line application.
//
// It wires configuration, storage, the credential services and the terminal
// UI into cobra commands. Every command resolves its dependencies once in the
// root command's PersistentPreRunE and releases them in PersistentPostRunE.
package client
