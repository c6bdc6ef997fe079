package main

import (
	"fmt"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"stillbreath/internal/audio"
	"stillbreath/internal/core/model"
	"stillbreath/internal/core/session"
	"stillbreath/internal/platform"
	"stillbreath/internal/storage"
	"stillbreath/internal/ui/screen"
	"stillbreath/internal/ui/tray"
)

const appName = "StillBreath"

func main() {
	lock, err := platform.AcquireLock(appName)
	if err != nil {
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = lock.Release()
	}()

	fyneApp := app.NewWithID("com.stillbreath.app")

	config := model.DefaultSessionConfig()
	engine := session.New(config, session.Options{TickInterval: time.Second})
	engine.SetCueEmitter(audio.NewPlayer())

	var store *storage.Store
	if opened, err := storage.NewStore(appName); err != nil {
		log.Printf("open state store: %v", err)
	} else {
		store = opened
		state, err := store.Load()
		if err != nil {
			log.Printf("load state: %v", err)
		}
		if state.HoldDuration > 0 {
			if err := engine.SetHoldDuration(state.HoldDuration); err != nil {
				log.Printf("restore hold duration: %v", err)
			}
		}
		engine.SetCounterStore(store)
	}

	mainScreen := screen.New(fyneApp, config.AllowedHoldDurations, screen.Callbacks{
		OnToggle:      engine.Toggle,
		OnReset:       engine.Reset,
		OnAcknowledge: engine.AcknowledgeCelebration,
		OnSetHold: func(value time.Duration) {
			if err := engine.SetHoldDuration(value); err != nil {
				return
			}
			if store != nil {
				if err := store.SaveHoldDuration(value); err != nil {
					log.Printf("save hold duration: %v", err)
				}
			}
		},
	})

	var trayManager *tray.Manager
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnToggle: engine.Toggle,
			OnReset:  engine.Reset,
			OnShow:   mainScreen.Show,
			OnQuit: func() {
				engine.Stop()
				fyneApp.Quit()
			},
		})
		mainScreen.HideOnClose()
	}

	events := engine.Subscribe(8)
	go func() {
		for event := range events {
			if event.Type == session.EventStoreError {
				log.Printf("persist session state: %s", event.Message)
				continue
			}
			applied := event
			fyne.Do(func() {
				mainScreen.Apply(applied)
				if trayManager != nil {
					updateTray(trayManager, applied)
				}
			})
		}
	}()

	mainScreen.Apply(initialEvent(engine.Status()))
	engine.Start()
	mainScreen.Show()
	fyneApp.Run()
	engine.Stop()
}

func initialEvent(status session.Status) session.Event {
	return session.Event{
		Type:              session.EventStateChange,
		Phase:             status.Phase,
		Active:            status.Active,
		TimeLeft:          status.TimeLeft,
		HoldDuration:      status.HoldDuration,
		CompletedSessions: status.CompletedSessions,
		ShowCelebration:   status.ShowCelebration,
		At:                time.Now(),
	}
}

func updateTray(manager *tray.Manager, event session.Event) {
	manager.SetActive(event.Active)
	switch {
	case event.Active:
		manager.SetStatus(formatRemaining(event.TimeLeft) + " left")
	case event.Phase == session.PhaseComplete:
		manager.SetStatus("session complete")
	default:
		manager.SetStatus("idle")
	}
}

func formatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int(remaining.Seconds())
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
