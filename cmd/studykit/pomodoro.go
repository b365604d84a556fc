package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pbaille/studykit/internal/pomodoro"
	"github.com/spf13/cobra"
)

func pomodoroCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pomodoro",
		Aliases: []string{"pomo"},
		Short:   "Work/break timer",
	}
	cmd.AddCommand(pomoRunCmd())
	cmd.AddCommand(pomoStatusCmd())
	cmd.AddCommand(pomoResetCmd())
	cmd.AddCommand(pomoConfigCmd())
	return cmd
}

func getPomodoro() *pomodoro.Engine {
	return pomodoro.New(getKV(), cfg.Pomodoro, appLogger)
}

func printSession(e *pomodoro.Engine) {
	info := e.SessionInfo()
	fmt.Printf("%-11s %02d:%02d  sessions: %d", info.Mode, info.Minutes, info.Seconds, info.CompletedSessions)
}

func pomoRunCmd() *cobra.Command {
	var untilBreak bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the timer and tick once per second until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e := getPomodoro()
			if err := e.Start(); err != nil {
				return err
			}
			return runTimer(ctx, e, untilBreak)
		},
	}

	cmd.Flags().BoolVar(&untilBreak, "until-break", false, "stop when the current work phase ends")
	return cmd
}

func runTimer(ctx context.Context, e *pomodoro.Engine, untilBreak bool) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	startMode := e.State().Mode
	for {
		fmt.Print("\r")
		printSession(e)

		select {
		case <-ctx.Done():
			e.Pause()
			fmt.Println("\nPaused. Run again to resume.")
			return nil
		case <-ticker.C:
			if err := e.Tick(); err != nil {
				fmt.Println()
				return err
			}
			if mode := e.State().Mode; mode != startMode {
				fmt.Printf("\n%s finished, now %s\n", startMode, mode)
				if untilBreak {
					return nil
				}
				startMode = mode
			}
		}
	}
}

func pomoStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getPomodoro()
			printSession(e)
			fmt.Println()

			s := e.Settings()
			fmt.Printf("work %dm, short break %dm, long break %dm every %d sessions\n",
				s.WorkMinutes, s.ShortBreak, s.LongBreak, s.CyclesBeforeLong)
			return nil
		},
	}
}

func pomoResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Go back to idle and clear counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := getPomodoro().Reset(); err != nil {
				return err
			}
			fmt.Println("Timer reset.")
			return nil
		},
	}
}

func pomoConfigCmd() *cobra.Command {
	var work, short, long, cycles int

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Change durations (minutes) and the long break cadence",
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getPomodoro()
			s := e.Settings()

			flags := cmd.Flags()
			if flags.Changed("work") {
				s.WorkMinutes = work
			}
			if flags.Changed("short") {
				s.ShortBreak = short
			}
			if flags.Changed("long") {
				s.LongBreak = long
			}
			if flags.Changed("cycles") {
				s.CyclesBeforeLong = cycles
			}

			if err := e.Configure(s); err != nil {
				return err
			}
			fmt.Printf("Saved: work %dm, short break %dm, long break %dm every %d sessions\n",
				s.WorkMinutes, s.ShortBreak, s.LongBreak, s.CyclesBeforeLong)
			return nil
		},
	}

	cmd.Flags().IntVar(&work, "work", 0, "work minutes")
	cmd.Flags().IntVar(&short, "short", 0, "short break minutes")
	cmd.Flags().IntVar(&long, "long", 0, "long break minutes")
	cmd.Flags().IntVar(&cycles, "cycles", 0, "work sessions before a long break")
	return cmd
}
