package update

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mxrlkn/murmur/internal/eventbus"
	"github.com/mxrlkn/murmur/internal/models"
)

// HandleKeyMsgWithEventBus handles keyboard input using the event bus.
// While the onboarding overlay is up it owns the keys.
func HandleKeyMsgWithEventBus(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	if appModel.Onboarding.Active {
		return handleOnboardingKeys(keyMsg, eb)
	}

	switch keyMsg.String() {
	case "ctrl+c":
		return tea.Quit
	case "ctrl+v":
		eb.SendToCore(eventbus.ToggleVoiceEvent{})
	case "ctrl+p":
		appModel.ShowConnections = !appModel.ShowConnections
	case "esc":
		if appModel.Session.AwaitingConfirmation {
			eb.SendToCore(eventbus.CancelPendingEvent{})
		}
	case "enter":
		text := strings.TrimSpace(appModel.Input)
		if text == "" {
			return nil
		}
		// The core decides whether this is a command or a confirm/
		// cancel phrase for a pending confirmation.
		if err := eb.SendToCore(eventbus.SubmitCommandEvent{Text: text}); err != nil {
			appModel.Session.Status = "Error sending command: " + err.Error()
			return nil
		}
		appModel.Input = ""
	case "backspace":
		if len(appModel.Input) > 0 {
			appModel.Input = appModel.Input[:len(appModel.Input)-1]
		}
	default:
		if len(keyMsg.String()) == 1 || keyMsg.String() == " " {
			appModel.Input += keyMsg.String()
		}
	}
	return nil
}

func handleOnboardingKeys(keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	switch keyMsg.String() {
	case "ctrl+c":
		return tea.Quit
	case "enter", "right":
		eb.SendToCore(eventbus.OnboardingNextEvent{})
	case "left":
		eb.SendToCore(eventbus.OnboardingBackEvent{})
	case "esc", "s":
		eb.SendToCore(eventbus.OnboardingSkipEvent{})
	}
	return nil
}

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// HandleCoreEvent processes events from the core
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		appModel.Messages = append(appModel.Messages, event.Messages...)
		appModel.Session = event.Session
		appModel.VoiceEnabled = event.VoiceEnabled
		appModel.Persona = event.Persona
	case eventbus.ConnectionUpdateEvent:
		applyConnection(appModel, event.Connection)
	case eventbus.OnboardingUpdateEvent:
		appModel.Onboarding = event.Onboarding
	case eventbus.OpenURLEvent:
		appModel.LastAuthURL = event.URL
		appModel.Messages = append(appModel.Messages, models.Message{
			Content: "Open this link to authorize: " + event.URL,
			Type:    models.Program,
		})
	}
	return nil
}

func applyConnection(appModel *models.AppModel, view models.ConnectionView) {
	for i, existing := range appModel.Connections {
		if existing.Target == view.Target {
			appModel.Connections[i] = view
			return
		}
	}
	appModel.Connections = append(appModel.Connections, view)
}

type TickMsg time.Time

func TickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
}

func HandleTickMsg(appModel *models.AppModel) tea.Cmd {
	// Only handle UI animations - loading dots
	if appModel.Session.Busy {
		appModel.LoadingDots = (appModel.LoadingDots + 1) % 4
	}
	return TickCmd()
}
