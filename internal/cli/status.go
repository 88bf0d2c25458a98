package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/twinlab/twin/internal/app/gamify"
	"github.com/twinlab/twin/internal/domain"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show your twin's level, XP and energy",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, st, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	now := time.Now()
	today := domain.ISODate(now)

	var sample *domain.HealthSample
	if hs, ok := st.HealthData[today]; ok {
		sample = &hs
	}
	var dayCtx *domain.DayContext
	if dc, ok := st.DailyContext[today]; ok {
		dayCtx = &dc
	}
	energy := gamify.ComputeEnergy(now, sample, dayCtx)
	avatar := gamify.AvatarState(now, energy)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name\t%s\n", st.Name)
	fmt.Fprintf(w, "Level\t%d (%s)\n", st.TwinLevel, st.LevelTitle)
	fmt.Fprintf(w, "XP\t%d (%d to next level)\n", st.XP, st.XPToNextLevel)
	fmt.Fprintf(w, "Energy\t%d\n", energy)
	fmt.Fprintf(w, "Mood\t%s\n", avatar.Expression)
	fmt.Fprintf(w, "Habits\t%d\n", len(st.Habits))
	if len(st.DayPlan.PlannedBlocks) > 0 {
		done := 0
		for _, b := range st.DayPlan.ActualBlocks {
			if b.IsCompleted {
				done++
			}
		}
		fmt.Fprintf(w, "Plan\t%d blocks, %d completed\n", len(st.DayPlan.PlannedBlocks), done)
	}
	if unread := st.UnreadCount(); unread > 0 {
		fmt.Fprintf(w, "Inbox\t%d unread\n", unread)
	}
	return w.Flush()
}
