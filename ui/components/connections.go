package components

import (
	"strings"

	"github.com/mxrlkn/murmur/internal/models"
	"github.com/mxrlkn/murmur/ui/styles"
)

// RenderConnections draws the provider connections panel.
func RenderConnections(connections []models.ConnectionView) string {
	var b strings.Builder

	title := styles.PanelTitleStyle()
	note := styles.NoteStyle()

	b.WriteString(title.Render("Connections") + "\n")
	if len(connections) == 0 {
		b.WriteString(note.Render("No providers configured yet.") + "\n")
	}
	for _, conn := range connections {
		line := conn.Target
		if conn.Provider != "" {
			line += " (" + conn.Provider + ")"
		}
		line += ": " + conn.Status
		b.WriteString(line + "\n")
		if conn.Note != "" {
			b.WriteString(note.Render("  "+conn.Note) + "\n")
		}
		if conn.AuthURL != "" && conn.Status == "pending" {
			b.WriteString(note.Render("  authorize at: "+conn.AuthURL) + "\n")
		}
	}

	return styles.PanelStyle().Render(strings.TrimRight(b.String(), "\n")) + "\n"
}
