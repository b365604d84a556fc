package domain

// Mode is the phase of the pomodoro timer.
type Mode string

const (
	ModeWork       Mode = "Work"
	ModeShortBreak Mode = "Short Break"
	ModeLongBreak  Mode = "Long Break"
	ModeIdle       Mode = "Idle"
)

// PomodoroSettings holds durations in minutes and the long break cadence.
type PomodoroSettings struct {
	WorkMinutes      int `json:"work_minutes" mapstructure:"work_minutes" validate:"gt=0"`
	ShortBreak       int `json:"short_break" mapstructure:"short_break" validate:"gt=0"`
	LongBreak        int `json:"long_break" mapstructure:"long_break" validate:"gt=0,gtfield=ShortBreak"`
	CyclesBeforeLong int `json:"cycles_before_long" mapstructure:"cycles_before_long" validate:"gt=0"`
}

// DefaultPomodoroSettings returns 25/5/15 minutes with a long break every 4
// work sessions.
func DefaultPomodoroSettings() PomodoroSettings {
	return PomodoroSettings{
		WorkMinutes:      25,
		ShortBreak:       5,
		LongBreak:        15,
		CyclesBeforeLong: 4,
	}
}

// Validate checks that all values are positive and that the long break is
// longer than the short one.
func (s PomodoroSettings) Validate() error {
	return validateStruct(s)
}

// DurationSeconds returns the length of a mode in seconds. Idle has none.
func (s PomodoroSettings) DurationSeconds(m Mode) int {
	switch m {
	case ModeWork:
		return s.WorkMinutes * 60
	case ModeShortBreak:
		return s.ShortBreak * 60
	case ModeLongBreak:
		return s.LongBreak * 60
	}
	return 0
}

// PomodoroState is the timer state persisted after every tick.
type PomodoroState struct {
	Mode              Mode `json:"mode"`
	SecondsLeft       int  `json:"seconds_left"`
	CyclesCompleted   int  `json:"cycles_completed"`
	CompletedSessions int  `json:"completed_sessions"`
}

// IdleState is the reset state.
func IdleState() PomodoroState {
	return PomodoroState{Mode: ModeIdle}
}
