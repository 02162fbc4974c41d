package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
)

const (
	fieldService = iota
	fieldKey
)

// formModel edits one credential. The key input never echoes the secret.
type formModel struct {
	inputs     []textinput.Model
	focus      int
	editing    bool
	submitting bool
}

func newFormModel(serviceName string) formModel {
	inputs := make([]textinput.Model, 2)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 40
	}
	inputs[fieldService].Placeholder = "alpha-vantage"
	inputs[fieldKey].Placeholder = "API key"
	inputs[fieldKey].EchoMode = textinput.EchoPassword
	inputs[fieldKey].EchoCharacter = '•'

	m := formModel{inputs: inputs}
	if serviceName != "" {
		m.editing = true
		m.inputs[fieldService].SetValue(serviceName)
		m.focus = fieldKey
	}
	m.inputs[m.focus].Focus()
	return m
}

func (m formModel) service() string {
	return strings.TrimSpace(m.inputs[fieldService].Value())
}

func (m formModel) secret() string {
	return m.inputs[fieldKey].Value()
}

// wipe drops the typed secret once it has been stored.
func (m *formModel) wipe() {
	m.inputs[fieldKey].SetValue("")
	m.inputs[fieldKey].Reset()
}

func (m *formModel) nextField(step int) {
	if m.editing {
		// the service name of an existing credential is fixed
		return
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + step + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m formModel) View() string {
	title := "NEW API KEY"
	if m.editing {
		title = "REPLACE API KEY"
	}

	var b strings.Builder
	b.WriteString("Service\n")
	if m.editing {
		b.WriteString("  " + m.service() + "\n")
	} else {
		b.WriteString(m.inputs[fieldService].View() + "\n")
	}
	b.WriteString("\nKey\n")
	b.WriteString(m.inputs[fieldKey].View() + "\n")
	if m.submitting {
		b.WriteString("\nencrypting...\n")
	}

	return renderPage(title, b.String(), "enter save  tab next field  esc cancel")
}
