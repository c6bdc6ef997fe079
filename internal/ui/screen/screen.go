package screen

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"stillbreath/internal/core/session"
	"stillbreath/internal/ui/guide"
)

const guideSide = float32(240)

// Callbacks defines the user intents the screen can emit.
type Callbacks struct {
	OnToggle      func()
	OnReset       func()
	OnSetHold     func(time.Duration)
	OnAcknowledge func()
}

// Window manages the single breathing screen.
type Window struct {
	window       fyne.Window
	callbacks    Callbacks
	animator     *guide.Animator
	circle       *canvas.Circle
	phaseLabel   *canvas.Text
	timerLabel   *canvas.Text
	countLabel   *widget.Label
	holdSelect   *widget.Select
	toggleButton *widget.Button
	resetButton  *widget.Button
	celebration  *fyne.Container
	holdByLabel  map[string]time.Duration
}

// New creates the breathing screen.
func New(app fyne.App, holdChoices []time.Duration, callbacks Callbacks) *Window {
	window := app.NewWindow("StillBreath")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	background := canvas.NewRectangle(color.NRGBA{R: 18, G: 27, B: 38, A: 255})

	circle := canvas.NewCircle(color.NRGBA{R: 108, G: 168, B: 255, A: 210})
	circle.StrokeColor = color.NRGBA{R: 210, G: 230, B: 255, A: 255}
	circle.StrokeWidth = 2

	backdrop := canvas.NewRectangle(color.Transparent)
	backdrop.SetMinSize(fyne.NewSize(guideSide, guideSide))
	guideArea := container.NewStack(backdrop, container.NewWithoutLayout(circle))

	phaseLabel := canvas.NewText("Ready", color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	phaseLabel.TextStyle = fyne.TextStyle{Bold: true}
	phaseLabel.TextSize = 26

	timerLabel := canvas.NewText("--:--", color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	timerLabel.TextStyle = fyne.TextStyle{Bold: true}
	timerLabel.TextSize = 34

	countLabel := widget.NewLabel("Sessions completed: 0")
	countLabel.Alignment = fyne.TextAlignCenter

	holdByLabel := make(map[string]time.Duration, len(holdChoices))
	options := make([]string, 0, len(holdChoices))
	for _, choice := range holdChoices {
		label := fmt.Sprintf("%d seconds", int(choice.Seconds()))
		holdByLabel[label] = choice
		options = append(options, label)
	}

	holdSelect := widget.NewSelect(options, nil)

	toggleButton := widget.NewButton("Begin", nil)
	toggleButton.Importance = widget.HighImportance
	resetButton := widget.NewButton("Reset", nil)

	screen := &Window{
		window:       window,
		callbacks:    callbacks,
		circle:       circle,
		phaseLabel:   phaseLabel,
		timerLabel:   timerLabel,
		countLabel:   countLabel,
		holdSelect:   holdSelect,
		toggleButton: toggleButton,
		resetButton:  resetButton,
		holdByLabel:  holdByLabel,
	}

	screen.animator = guide.New(guide.DefaultConfig(), func(scale float32) {
		fyne.Do(func() {
			screen.applyScale(scale)
		})
	})
	screen.applyScale(guide.DefaultConfig().MinScale)

	holdSelect.OnChanged = func(selected string) {
		if value, ok := screen.holdByLabel[selected]; ok && screen.callbacks.OnSetHold != nil {
			screen.callbacks.OnSetHold(value)
		}
	}
	toggleButton.OnTapped = func() {
		if screen.callbacks.OnToggle != nil {
			screen.callbacks.OnToggle()
		}
	}
	resetButton.OnTapped = func() {
		if screen.callbacks.OnReset != nil {
			screen.callbacks.OnReset()
		}
	}

	screen.celebration = screen.buildCelebration()
	screen.celebration.Hide()

	holdRow := container.NewHBox(layout.NewSpacer(), widget.NewLabel("Hold for"), holdSelect, layout.NewSpacer())
	buttons := container.NewGridWithColumns(2, toggleButton, resetButton)
	column := container.NewVBox(
		container.NewCenter(phaseLabel),
		container.NewCenter(guideArea),
		container.NewCenter(timerLabel),
		holdRow,
		buttons,
		countLabel,
	)

	window.SetContent(container.NewStack(background, container.NewPadded(column), screen.celebration))
	window.Resize(fyne.NewSize(380, 560))
	window.CenterOnScreen()

	return screen
}

// Show displays the screen.
func (screen *Window) Show() {
	screen.window.Show()
	screen.window.RequestFocus()
}

// HideOnClose makes the close button hide the window instead of quitting,
// for platforms where the tray keeps the app reachable.
func (screen *Window) HideOnClose() {
	screen.window.SetCloseIntercept(func() {
		screen.window.Hide()
	})
}

// Apply updates the screen from an engine event. Must run on the UI thread.
func (screen *Window) Apply(event session.Event) {
	screen.setPhase(event.Phase, event.Active)
	screen.setTimeLeft(event.TimeLeft)
	screen.setCount(event.CompletedSessions)
	screen.setHold(event.HoldDuration, event.Active)
	screen.setCelebration(event.ShowCelebration)
	screen.setButtons(event)

	if event.Type == session.EventStateChange || event.Type == session.EventCompleted {
		screen.animate(event)
	}
}

func (screen *Window) buildCelebration() *fyne.Container {
	dim := canvas.NewRectangle(color.NRGBA{R: 0, G: 0, B: 0, A: 200})

	title := canvas.NewText("Session complete", color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.TextSize = 28

	message := widget.NewLabel("Well done. Take this calm with you.")
	message.Alignment = fyne.TextAlignCenter

	done := widget.NewButton("Done", func() {
		if screen.callbacks.OnAcknowledge != nil {
			screen.callbacks.OnAcknowledge()
		}
	})
	done.Importance = widget.HighImportance

	card := container.NewVBox(
		container.NewCenter(title),
		message,
		container.NewCenter(done),
	)
	return container.NewStack(dim, container.NewCenter(card))
}

func (screen *Window) animate(event session.Event) {
	breathing := event.Phase == session.PhaseInhale ||
		event.Phase == session.PhaseHold ||
		event.Phase == session.PhaseExhale

	switch {
	case event.Active && breathing:
		screen.animator.EnterPhase(event.Phase, event.PhaseDuration)
	case breathing:
		screen.animator.Freeze()
	default:
		screen.animator.Reset()
	}
}

func (screen *Window) applyScale(scale float32) {
	side := guideSide * scale
	screen.circle.Resize(fyne.NewSize(side, side))
	screen.circle.Move(fyne.NewPos((guideSide-side)/2, (guideSide-side)/2))
	screen.circle.Refresh()
}

func (screen *Window) setPhase(phase session.Phase, active bool) {
	text := phaseDescription(phase)
	if !active && phase != session.PhaseReady && phase != session.PhaseComplete {
		text += " (paused)"
	}
	screen.phaseLabel.Text = text
	screen.phaseLabel.Refresh()
}

func (screen *Window) setTimeLeft(timeLeft time.Duration) {
	screen.timerLabel.Text = formatDuration(timeLeft)
	screen.timerLabel.Refresh()
}

func (screen *Window) setCount(count int) {
	screen.countLabel.SetText(fmt.Sprintf("Sessions completed: %d", count))
}

func (screen *Window) setHold(value time.Duration, active bool) {
	if active {
		screen.holdSelect.Disable()
	} else {
		screen.holdSelect.Enable()
	}

	label := fmt.Sprintf("%d seconds", int(value.Seconds()))
	if _, ok := screen.holdByLabel[label]; ok && screen.holdSelect.Selected != label {
		screen.holdSelect.SetSelected(label)
	}
}

func (screen *Window) setCelebration(show bool) {
	if show {
		screen.celebration.Show()
		return
	}
	screen.celebration.Hide()
}

func (screen *Window) setButtons(event session.Event) {
	switch {
	case event.Active:
		screen.toggleButton.SetText("Pause")
	case event.Phase == session.PhaseReady:
		screen.toggleButton.SetText("Begin")
	case event.Phase == session.PhaseComplete:
		screen.toggleButton.SetText("Start over")
	default:
		screen.toggleButton.SetText("Resume")
	}
}

func phaseDescription(phase session.Phase) string {
	switch phase {
	case session.PhaseInhale:
		return "Breathe in"
	case session.PhaseHold:
		return "Hold"
	case session.PhaseExhale:
		return "Breathe out"
	case session.PhaseComplete:
		return "Complete"
	default:
		return "Ready"
	}
}

func formatDuration(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	seconds := int(value.Seconds())
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
