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
	habitCmd.AddCommand(habitAddCmd)
	habitCmd.AddCommand(habitListCmd)
	habitCmd.AddCommand(habitDoneCmd)
	habitCmd.AddCommand(habitRmCmd)
	habitAddCmd.Flags().StringVar(&habitFreq, "freq", "daily", "Frequency: daily or weekly")
	rootCmd.AddCommand(habitCmd)
}

var habitFreq string

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage habits",
}

var habitAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Create a new habit",
	Args:  cobra.ExactArgs(1),
	RunE:  runHabitAdd,
}

var habitListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List habits with streaks",
	RunE:    runHabitList,
}

var habitDoneCmd = &cobra.Command{
	Use:   "done HABIT_ID",
	Short: "Mark a habit completed for today",
	Args:  cobra.ExactArgs(1),
	RunE:  runHabitDone,
}

var habitRmCmd = &cobra.Command{
	Use:   "rm HABIT_ID",
	Short: "Delete a habit",
	Args:  cobra.ExactArgs(1),
	RunE:  runHabitRm,
}

func runHabitAdd(cmd *cobra.Command, args []string) error {
	d, _, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	var out gamify.Outcome
	err = d.Session.Apply(func(st domain.UserState) (domain.UserState, error) {
		next, o, err := gamify.CreateHabit(st, args[0], domain.Frequency(habitFreq), time.Now())
		out = o
		return next, err
	})
	if err != nil {
		return err
	}
	d.Session.Flush()

	fmt.Printf("Created habit %q (+%d XP)\n", args[0], out.XPAwarded)
	reportOutcome(out)
	return nil
}

func runHabitList(cmd *cobra.Command, args []string) error {
	d, st, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if len(st.Habits) == 0 {
		fmt.Println("No habits yet. Run 'twin habit add <title>' to create one.")
		return nil
	}

	today := domain.ISODate(time.Now())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tFREQ\tSTREAK\tTODAY")
	for _, h := range st.Habits {
		mark := ""
		if h.CompletedOn(today) {
			mark = "done"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", h.ID, h.Title, h.Frequency, h.Streak, mark)
	}
	return w.Flush()
}

func runHabitDone(cmd *cobra.Command, args []string) error {
	d, _, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	var out gamify.Outcome
	err = d.Session.Apply(func(st domain.UserState) (domain.UserState, error) {
		next, o, err := gamify.ToggleHabit(st, args[0], time.Now())
		out = o
		return next, err
	})
	if err != nil {
		return err
	}
	d.Session.Flush()

	fmt.Printf("Habit completed (+%d XP)\n", out.XPAwarded)
	reportOutcome(out)
	return nil
}

func runHabitRm(cmd *cobra.Command, args []string) error {
	d, _, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	err = d.Session.Apply(func(st domain.UserState) (domain.UserState, error) {
		return gamify.DeleteHabit(st, args[0])
	})
	if err != nil {
		return err
	}
	d.Session.Flush()

	fmt.Printf("Removed habit %s\n", args[0])
	return nil
}

// reportOutcome prints the noteworthy parts of a gamified outcome.
func reportOutcome(out gamify.Outcome) {
	if out.StreakBonus {
		fmt.Println("Streak bonus earned!")
	}
	if out.LeveledUp {
		fmt.Printf("Level up! Your twin is now level %d.\n", out.NewLevel)
	}
	if out.CapExceeded {
		fmt.Println("Daily reward cap reached: completion recorded, no XP awarded.")
	}
}
