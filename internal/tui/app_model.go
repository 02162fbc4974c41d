package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/dashkeys/internal/service"
	"github.com/MKhiriev/dashkeys/models"
)

type screen int

const (
	screenList screen = iota
	screenForm
)

type appModel struct {
	ctx           context.Context
	manager       service.CredentialManager
	buildInfo     models.AppBuildInfo
	currentScreen screen

	list listModel
	form formModel

	showError     bool
	errorOverlay  errorOverlayModel
	showConfirm   bool
	confirm       confirmModel
	pendingDelete string
	showBuildInfo bool

	// writeClipboard is replaced in tests
	writeClipboard func(string) error
}

func newAppModel(ctx context.Context, manager service.CredentialManager, buildInfo models.AppBuildInfo) appModel {
	return appModel{
		ctx:            ctx,
		manager:        manager,
		buildInfo:      buildInfo,
		currentScreen:  screenList,
		list:           newListModel(),
		writeClipboard: clipboard.WriteAll,
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.list.spinner.Tick, m.cmdLoadList())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showError {
			if key.Matches(msg, keys.enter) || key.Matches(msg, keys.esc) {
				return m.dismissError(), nil
			}
			return m, nil
		}
		if m.showConfirm {
			if key.Matches(msg, keys.yes) {
				m.showConfirm = false
				name := m.pendingDelete
				m.pendingDelete = ""
				if name == "" {
					return m, nil
				}
				return m, m.cmdRemove(name)
			}
			if key.Matches(msg, keys.no) || key.Matches(msg, keys.esc) {
				m.showConfirm = false
				m.pendingDelete = ""
			}
			return m, nil
		}
		if m.showBuildInfo {
			if key.Matches(msg, keys.esc) || key.Matches(msg, keys.info) {
				m.showBuildInfo = false
			}
			return m, nil
		}

	case listLoadedMsg:
		m.list.loading = false
		m.list.lastErr = msg.err
		if msg.err == nil {
			m.list.items = msg.items
			if m.list.idx >= len(m.list.items) {
				m.list.idx = max(len(m.list.items)-1, 0)
			}
		}
		return m, nil

	case credentialSavedMsg:
		m.form.submitting = false
		if msg.err != nil {
			return m.withError(msg.err, m.form.service()), nil
		}
		m.form.wipe()
		m.list.upsert(msg.state)
		m.list.status = "saved " + msg.state.Service
		m.currentScreen = screenList
		return m, cmdClearStatus()

	case credentialRemovedMsg:
		if msg.err != nil {
			return m.withError(msg.err, msg.service), nil
		}
		m.list.drop(msg.service)
		m.list.status = "removed " + msg.service
		return m, cmdClearStatus()

	case copiedMsg:
		m.list.status = "copied the key of " + msg.service + " to the clipboard"
		return m, cmdClearStatus()

	case errMsg:
		return m.withError(msg.err, msg.service), m.cmdLoadList()

	case storageChangedMsg:
		return m, m.cmdLoadList()

	case clearStatusMsg:
		m.list.status = ""
		return m, nil

	case spinner.TickMsg:
		if !m.list.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.list.spinner, cmd = m.list.spinner.Update(msg)
		return m, cmd
	}

	switch m.currentScreen {
	case screenForm:
		return m.updateForm(msg)
	default:
		return m.updateList(msg)
	}
}

func (m appModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.quit):
		return m, tea.Quit
	case key.Matches(keyMsg, keys.up):
		if m.list.idx > 0 {
			m.list.idx--
		}
	case key.Matches(keyMsg, keys.down):
		if m.list.idx < len(m.list.items)-1 {
			m.list.idx++
		}
	case key.Matches(keyMsg, keys.newItem):
		m.form = newFormModel("")
		m.currentScreen = screenForm
	case key.Matches(keyMsg, keys.edit), key.Matches(keyMsg, keys.enter):
		if item, ok := m.list.current(); ok {
			m.form = newFormModel(item.Service)
			m.currentScreen = screenForm
		}
	case key.Matches(keyMsg, keys.delete):
		if item, ok := m.list.current(); ok {
			m.showConfirm = true
			m.confirm.message = item.Service
			m.pendingDelete = item.Service
		}
	case key.Matches(keyMsg, keys.copy):
		if item, ok := m.list.current(); ok {
			return m, m.cmdCopy(item.Service)
		}
	case key.Matches(keyMsg, keys.reload):
		m.list.loading = true
		return m, tea.Batch(m.list.spinner.Tick, m.cmdLoadList())
	case key.Matches(keyMsg, keys.info):
		m.showBuildInfo = true
	}

	return m, nil
}

func (m appModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.esc):
			m.form.wipe()
			m.currentScreen = screenList
			return m, nil
		case key.Matches(keyMsg, keys.tab):
			m.form.nextField(1)
			return m, nil
		case key.Matches(keyMsg, keys.backtab):
			m.form.nextField(-1)
			return m, nil
		case key.Matches(keyMsg, keys.enter):
			if m.form.submitting {
				return m, nil
			}
			m.form.submitting = true
			return m, m.cmdSave(m.form.service(), m.form.secret(), m.form.editing)
		}
	}

	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

func (m appModel) withError(err error, name string) appModel {
	m.showError = true
	m.errorOverlay = errorOverlayModel{service: name, message: service.UserMessage(err)}
	if errors.Is(err, service.ErrAuthenticationFailure) || errors.Is(err, service.ErrShape) {
		m.errorOverlay.hint = "remove the key (d) and enter it again (n)"
	}
	return m
}

// dismissError closes the overlay and drops the error recorded on the
// credential it was raised for.
func (m appModel) dismissError() appModel {
	name := m.errorOverlay.service
	m.showError = false
	m.errorOverlay = errorOverlayModel{}
	if name == "" {
		return m
	}

	store, err := m.manager.For(name)
	if err != nil {
		return m
	}
	store.ClearError()
	m.list.refresh(store.State())
	return m
}

func (m appModel) View() string {
	if m.showBuildInfo {
		return renderBuildInfoWindow(m.buildInfo)
	}
	if m.showError {
		return m.errorOverlay.View()
	}
	if m.showConfirm {
		return m.confirm.View()
	}
	if m.currentScreen == screenForm {
		return m.form.View()
	}
	return m.list.View()
}

func (m appModel) cmdLoadList() tea.Cmd {
	ctx := m.ctx
	manager := m.manager
	return func() tea.Msg {
		names, err := manager.List(ctx)
		if err != nil {
			return listLoadedMsg{err: err}
		}
		items := make([]models.CredentialState, 0, len(names))
		for _, name := range names {
			store, err := manager.For(name)
			if err != nil {
				return listLoadedMsg{err: err}
			}
			items = append(items, store.Load(ctx))
		}
		return listLoadedMsg{items: items}
	}
}

func (m appModel) cmdSave(name, secret string, editing bool) tea.Cmd {
	ctx := m.ctx
	manager := m.manager
	return func() tea.Msg {
		store, err := manager.For(name)
		if err != nil {
			return credentialSavedMsg{err: err}
		}
		if editing {
			err = store.Update(ctx, secret)
		} else {
			err = store.Store(ctx, secret)
		}
		return credentialSavedMsg{state: store.State(), err: err}
	}
}

func (m appModel) cmdRemove(name string) tea.Cmd {
	ctx := m.ctx
	manager := m.manager
	return func() tea.Msg {
		store, err := manager.For(name)
		if err != nil {
			return credentialRemovedMsg{service: name, err: err}
		}
		return credentialRemovedMsg{service: name, err: store.Remove(ctx)}
	}
}

// cmdCopy decrypts the key and hands it straight to the clipboard.
func (m appModel) cmdCopy(name string) tea.Cmd {
	ctx := m.ctx
	manager := m.manager
	write := m.writeClipboard
	return func() tea.Msg {
		store, err := manager.For(name)
		if err != nil {
			return errMsg{service: name, err: err}
		}
		plaintext, ok, err := store.Retrieve(ctx)
		if err != nil {
			return errMsg{service: name, err: err}
		}
		if !ok {
			return errMsg{service: name, err: fmt.Errorf("no key stored for %s", name)}
		}
		if err = write(plaintext); err != nil {
			return errMsg{service: name, err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return copiedMsg{service: name}
	}
}

func cmdClearStatus() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
