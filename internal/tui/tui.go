// Package tui is the terminal credential widget: it lists the stored API
// keys by their masks and lets the user add, replace, remove and copy them.
// It only ever shows masked state; a decrypted key goes to the clipboard and
// is not rendered.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/dashkeys/internal/logger"
	"github.com/MKhiriev/dashkeys/internal/service"
	"github.com/MKhiriev/dashkeys/internal/store"
	"github.com/MKhiriev/dashkeys/models"
)

type TUI struct {
	manager   service.CredentialManager
	storage   store.KeyValueStorage
	buildInfo models.AppBuildInfo
	logger    *logger.Logger
}

func New(manager service.CredentialManager, storage store.KeyValueStorage, buildInfo models.AppBuildInfo, log *logger.Logger) *TUI {
	return &TUI{manager: manager, storage: storage, buildInfo: buildInfo, logger: log}
}

// Run blocks until the user quits. When the storage can watch for external
// changes, the list reloads whenever another process writes to it.
func (t *TUI) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(newAppModel(ctx, t.manager, t.buildInfo), tea.WithAltScreen(), tea.WithContext(ctx))

	if w, ok := t.storage.(store.Watcher); ok {
		err := w.Watch(ctx, func() { program.Send(storageChangedMsg{}) })
		if err != nil {
			t.logger.Warn().Err(err).Msg("storage watch disabled")
		}
	}

	_, err := program.Run()
	return err
}
