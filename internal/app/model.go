package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mxrlkn/murmur/internal/update"
	"github.com/mxrlkn/murmur/ui/components"
)

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		update.TickCmd(),
		m.dispatcher.ListenForUIEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle core events and continue listening
	if coreEvent, ok := msg.(update.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.appModel, coreEvent)
		return m, tea.Batch(cmd, m.dispatcher.ListenForUIEvents())
	}

	eventBus := m.dispatcher.GetEventBus()
	cmd := update.HandleUpdateWithEventBus(&m.appModel, msg, eventBus)

	return m, cmd
}

func (m *AppModel) View() string {
	if m.appModel.Onboarding.Active {
		return components.RenderOnboarding(m.appModel.Onboarding, m.appModel.Width)
	}

	var b strings.Builder

	b.WriteString(components.RenderMessages(m.appModel.Messages))
	if m.appModel.ShowConnections {
		b.WriteString(components.RenderConnections(m.appModel.Connections))
	}
	b.WriteString(components.RenderInput(m.appModel.Input, m.appModel.Width))
	b.WriteString("\n")
	b.WriteString(components.RenderStatus(
		m.appModel.Session,
		m.appModel.LoadingDots,
		m.appModel.VoiceEnabled,
		m.appModel.Persona,
		m.appModel.Width,
	))

	return b.String()
}
