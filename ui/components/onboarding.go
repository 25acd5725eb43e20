package components

import (
	"strings"

	"github.com/mxrlkn/murmur/internal/models"
	"github.com/mxrlkn/murmur/ui/styles"
)

// RenderOnboarding draws the first-run wizard overlay.
func RenderOnboarding(view models.OnboardingView, width int) string {
	var b strings.Builder

	b.WriteString(styles.PanelTitleStyle().Render(view.Title) + "\n")
	b.WriteString(styles.NoteStyle().Render(view.Progress) + "\n\n")
	b.WriteString(view.Body + "\n\n")

	controls := "enter: next"
	if view.LastStep {
		controls = "enter: finish"
	}
	if view.CanBack {
		controls += "  left: back"
	}
	controls += "  esc: skip"
	b.WriteString(styles.NoteStyle().Render(controls))

	return styles.OverlayStyle(width).Render(b.String()) + "\n"
}
