package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/MKhiriev/dashkeys/internal/service"
	"github.com/MKhiriev/dashkeys/models"
)

type listModel struct {
	items   []models.CredentialState
	idx     int
	loading bool
	spinner spinner.Model
	status  string
	lastErr error
}

func newListModel() listModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return listModel{spinner: s, loading: true}
}

func (m listModel) current() (models.CredentialState, bool) {
	if len(m.items) == 0 || m.idx < 0 || m.idx >= len(m.items) {
		return models.CredentialState{}, false
	}
	return m.items[m.idx], true
}

// upsert replaces the row of state.Service or appends it.
func (m *listModel) upsert(state models.CredentialState) {
	for i := range m.items {
		if m.items[i].Service == state.Service {
			m.items[i] = state
			return
		}
	}
	m.items = append(m.items, state)
	m.idx = len(m.items) - 1
}

// refresh replaces the row of state.Service if there is one.
func (m *listModel) refresh(state models.CredentialState) {
	for i := range m.items {
		if m.items[i].Service == state.Service {
			m.items[i] = state
			return
		}
	}
}

func (m *listModel) drop(name string) {
	for i := range m.items {
		if m.items[i].Service == name {
			m.items = append(m.items[:i], m.items[i+1:]...)
			break
		}
	}
	if m.idx >= len(m.items) {
		m.idx = max(len(m.items)-1, 0)
	}
}

func statusIcon(s models.CredentialState) string {
	switch {
	case s.IsLoading:
		return "[~]"
	case s.Status == models.StatusError:
		return "[!]"
	case s.HasKey:
		return "[*]"
	default:
		return "[ ]"
	}
}

func (m listModel) View() string {
	var b strings.Builder

	if m.loading {
		b.WriteString(m.spinner.View() + " loading...\n")
	} else if len(m.items) == 0 {
		b.WriteString("No API keys stored\n")
	} else {
		for i, item := range m.items {
			cursor := "  "
			if i == m.idx {
				cursor = "> "
			}
			fmt.Fprintf(&b, "%s%s %-24s %s\n", cursor, statusIcon(item), fitText(item.Service, 24), maskStyle.Render(item.MaskedKey))
		}
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	if m.lastErr != nil {
		b.WriteString("\n" + errorStyle.Render(service.UserMessage(m.lastErr)) + "\n")
	}

	return renderPage("API KEYS", b.String(), "n new  e edit  d remove  c copy  r reload  v about  q quit")
}
