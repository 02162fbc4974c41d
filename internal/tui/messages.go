package tui

import "github.com/MKhiriev/dashkeys/models"

type listLoadedMsg struct {
	items []models.CredentialState
	err   error
}

type credentialSavedMsg struct {
	state models.CredentialState
	err   error
}

type credentialRemovedMsg struct {
	service string
	err     error
}

type copiedMsg struct {
	service string
}

type errMsg struct {
	service string
	err     error
}

// storageChangedMsg is sent when another process rewrites the storage.
type storageChangedMsg struct{}

type clearStatusMsg struct{}
