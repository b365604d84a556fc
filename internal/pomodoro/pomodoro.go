// Package pomodoro implements an externally clocked work/break timer. The
// caller drives it by calling Tick once per elapsed second; the engine never
// reads the wall clock.
package pomodoro

import (
	"fmt"
	"log/slog"

	"github.com/pbaille/studykit/internal/domain"
	"github.com/pbaille/studykit/internal/store"
)

// StorageName is the storage name of the settings and state document.
const StorageName = "pomodoro"

type document struct {
	Settings domain.PomodoroSettings `json:"settings"`
	State    domain.PomodoroState    `json:"state"`
}

// Engine is the pomodoro state machine
type Engine struct {
	kv       store.KV
	settings domain.PomodoroSettings
	state    domain.PomodoroState
	logger   *slog.Logger
}

// SessionInfo describes the current phase for display.
type SessionInfo struct {
	Mode              domain.Mode
	Minutes           int
	Seconds           int
	CompletedSessions int
}

// New loads settings and state from kv. Stored fields are merged over
// defaults; settings or state that fail validation are replaced by defaults.
func New(kv store.KV, defaults domain.PomodoroSettings, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "pomodoro"))

	if err := defaults.Validate(); err != nil {
		logger.Warn("invalid default settings, using built-in defaults",
			slog.String("error", err.Error()))
		defaults = domain.DefaultPomodoroSettings()
	}

	doc := store.Load(kv, StorageName, document{Settings: defaults, State: domain.IdleState()}, logger)

	if err := doc.Settings.Validate(); err != nil {
		logger.Warn("invalid stored settings, using defaults",
			slog.String("error", err.Error()))
		doc.Settings = defaults
	}
	if err := validateState(doc.State); err != nil {
		logger.Warn("invalid stored state, resetting",
			slog.String("error", err.Error()))
		doc.State = domain.IdleState()
	}

	return &Engine{kv: kv, settings: doc.Settings, state: doc.State, logger: logger}
}

func validateState(s domain.PomodoroState) error {
	switch s.Mode {
	case domain.ModeWork, domain.ModeShortBreak, domain.ModeLongBreak, domain.ModeIdle:
	default:
		return domain.NewValidationError("mode", fmt.Sprintf("unknown mode %q", s.Mode))
	}
	if s.SecondsLeft < 0 {
		return domain.NewValidationError("seconds_left", "must not be negative")
	}
	if s.CyclesCompleted < 0 {
		return domain.NewValidationError("cycles_completed", "must not be negative")
	}
	if s.CompletedSessions < 0 {
		return domain.NewValidationError("completed_sessions", "must not be negative")
	}
	return nil
}

// commit persists settings and state, adopting them only once written.
func (e *Engine) commit(settings domain.PomodoroSettings, state domain.PomodoroState) error {
	if err := store.Save(e.kv, StorageName, document{Settings: settings, State: state}); err != nil {
		return fmt.Errorf("save pomodoro: %w", err)
	}
	e.settings, e.state = settings, state
	return nil
}

// Settings returns the current settings.
func (e *Engine) Settings() domain.PomodoroSettings {
	return e.settings
}

// State returns the current state.
func (e *Engine) State() domain.PomodoroState {
	return e.state
}

// Configure validates and replaces the settings wholesale. The running state
// is kept; new durations apply from the next phase.
func (e *Engine) Configure(settings domain.PomodoroSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := e.commit(settings, e.state); err != nil {
		return err
	}
	e.logger.Debug("configured pomodoro",
		slog.Int("work_minutes", settings.WorkMinutes),
		slog.Int("short_break", settings.ShortBreak),
		slog.Int("long_break", settings.LongBreak),
		slog.Int("cycles_before_long", settings.CyclesBeforeLong))
	return nil
}

// Start begins a fresh work phase unless one is already running.
func (e *Engine) Start() error {
	next := e.state
	if next.Mode != domain.ModeWork || next.SecondsLeft <= 0 {
		next.Mode = domain.ModeWork
		next.SecondsLeft = e.settings.DurationSeconds(domain.ModeWork)
	}
	return e.commit(e.settings, next)
}

// Pause does nothing: the caller pauses by no longer calling Tick.
func (e *Engine) Pause() {}

// Reset returns to Idle and clears all counters.
func (e *Engine) Reset() error {
	return e.commit(e.settings, domain.IdleState())
}

// Tick advances the timer by one second. An expired phase transitions before
// the decrement, and a phase that reaches zero transitions immediately so the
// next phase starts with its full duration.
func (e *Engine) Tick() error {
	next := e.state
	if next.SecondsLeft <= 0 {
		next = transition(e.settings, next)
	}
	next.SecondsLeft = max(0, next.SecondsLeft-1)
	if next.SecondsLeft == 0 {
		next = transition(e.settings, next)
	}

	if next.Mode != e.state.Mode {
		e.logger.Debug("pomodoro phase changed",
			slog.String("from", string(e.state.Mode)),
			slog.String("to", string(next.Mode)),
			slog.Int("completed_sessions", next.CompletedSessions))
	}
	return e.commit(e.settings, next)
}

// transition moves to the phase following s.Mode. Finishing work counts a
// session and picks a long break every CyclesBeforeLong sessions.
func transition(settings domain.PomodoroSettings, s domain.PomodoroState) domain.PomodoroState {
	switch s.Mode {
	case domain.ModeWork:
		s.CompletedSessions++
		s.CyclesCompleted = (s.CyclesCompleted + 1) % settings.CyclesBeforeLong
		if s.CyclesCompleted == 0 {
			s.Mode = domain.ModeLongBreak
		} else {
			s.Mode = domain.ModeShortBreak
		}
	default:
		s.Mode = domain.ModeWork
	}
	s.SecondsLeft = settings.DurationSeconds(s.Mode)
	return s
}

// SessionInfo returns the mode, time remaining and completed sessions.
func (e *Engine) SessionInfo() SessionInfo {
	return SessionInfo{
		Mode:              e.state.Mode,
		Minutes:           e.state.SecondsLeft / 60,
		Seconds:           e.state.SecondsLeft % 60,
		CompletedSessions: e.state.CompletedSessions,
	}
}

// IsActive reports whether a phase is running.
func (e *Engine) IsActive() bool {
	return e.state.Mode != domain.ModeIdle && e.state.SecondsLeft > 0
}
