package app

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mxrlkn/murmur/internal/api"
	"github.com/mxrlkn/murmur/internal/config"
	"github.com/mxrlkn/murmur/internal/core"
	"github.com/mxrlkn/murmur/internal/dispatcher"
	"github.com/mxrlkn/murmur/internal/eventbus"
	"github.com/mxrlkn/murmur/internal/models"
	"github.com/mxrlkn/murmur/internal/speech"
	"github.com/mxrlkn/murmur/internal/store"
)

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.Service
	prefs      *store.Store
	model      *AppModel
}

type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
}

func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	storePath, err := config.StorePath()
	if err != nil {
		return nil, err
	}
	prefs, err := store.Open(storePath)
	if err != nil {
		log.Printf("Failed to open preference store: %v", err)
		prefs = nil
	}

	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: cfg.APIBaseURL})
	speaker := speech.NewExecSpeaker(cfg.SpeechCommand)

	eb := eventbus.NewEventBus()
	disp := dispatcher.NewEventDispatcher(eb)

	var corePrefs core.Prefs
	if prefs != nil {
		corePrefs = prefs
	}
	service := core.NewService(client, eb, corePrefs, speaker)
	service.SetVoiceDefault(cfg.VoiceEnabled)

	model := &AppModel{
		appModel:   models.AppModel{Session: models.SessionView{Status: "Ready"}},
		dispatcher: disp,
	}

	return &Application{
		config:     cfg,
		eventBus:   eb,
		dispatcher: disp,
		service:    service,
		prefs:      prefs,
		model:      model,
	}, nil
}

func (app *Application) Start() error {
	app.service.Start()

	p := tea.NewProgram(app.model)
	_, err := p.Run()

	return err
}

func (app *Application) Stop() {
	app.service.Stop()
	app.dispatcher.Stop()
	app.eventBus.Close()
	if app.prefs != nil {
		app.prefs.Close()
	}
}
