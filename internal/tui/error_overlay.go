package tui

type errorOverlayModel struct {
	// service is the credential the error belongs to; empty for list errors.
	service string
	message string
	hint    string
}

func (m errorOverlayModel) View() string {
	content := errorStyle.Render("Error") + "\n\n" + m.message
	if m.hint != "" {
		content += "\n" + helpStyle.Render(m.hint)
	}
	content += "\n\nenter / esc close"
	return overlayBoxStyle.Render(content)
}
