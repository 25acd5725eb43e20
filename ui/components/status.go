package components

import (
	"strings"

	"github.com/mxrlkn/murmur/internal/models"
	"github.com/mxrlkn/murmur/ui/styles"
)

func RenderStatus(session models.SessionView, loadingDots int, voiceEnabled bool, persona string, width int) string {
	statusStyle := styles.StatusStyle(width)

	content := session.Status
	if session.Busy {
		content += strings.Repeat(".", loadingDots)
	}
	if session.AwaitingConfirmation {
		content += "  [enter \"confirm\" or \"cancel\"]"
	}
	voice := "voice off"
	if voiceEnabled {
		voice = "voice on"
	}
	content += "  |  " + voice
	if persona != "" {
		content += "  |  persona: " + persona
	}

	return statusStyle.Render(content)
}
