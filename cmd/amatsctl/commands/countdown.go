package commands

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/spec-kit/amats-service/internal/tui"
)

func newCountdownCmd() *cobra.Command {
	var (
		minutes     int
		seconds     int
		suspendedBy string
		tick        time.Duration
	)
	cmd := &cobra.Command{
		Use:   "countdown",
		Short: "Preview the suspended-login countdown dialog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if minutes < 0 || seconds < 0 {
				return fmt.Errorf("minutes and seconds must not be negative")
			}
			model := tui.NewCountdownModel(suspendedBy, minutes, seconds, tick)
			_, err := tea.NewProgram(model, tea.WithOutput(cmd.OutOrStdout())).Run()
			return err
		},
	}
	cmd.Flags().IntVar(&minutes, "minutes", 1, "remaining minutes")
	cmd.Flags().IntVar(&seconds, "seconds", 0, "remaining seconds")
	cmd.Flags().StringVar(&suspendedBy, "by", "system", "name of the suspending administrator")
	cmd.Flags().DurationVar(&tick, "tick", time.Second, "tick interval")
	return cmd
}
