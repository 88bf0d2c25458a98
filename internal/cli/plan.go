package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/twinlab/twin/internal/app/gamify"
	"github.com/twinlab/twin/internal/domain"
)

func init() {
	planCmd.AddCommand(planAddCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planDoneCmd)
	planCmd.AddCommand(planRmCmd)
	planCmd.AddCommand(planClearCmd)
	planCmd.AddCommand(planGenerateCmd)
	planAddCmd.Flags().StringVar(&planBlockType, "type", "work", "Block type: work, rest, habit, exercise, social, health, other")
	planGenerateCmd.Flags().StringVar(&planGoals, "goals", "", "Free-text goals for the generated plan")
	rootCmd.AddCommand(planCmd)
}

var (
	planBlockType string
	planGoals     string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage today's day plan",
}

var planAddCmd = &cobra.Command{
	Use:   "add TITLE START END",
	Short: "Add a time block (times as HH:MM)",
	Args:  cobra.ExactArgs(3),
	RunE:  runPlanAdd,
}

var planListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List today's time blocks",
	RunE:    runPlanList,
}

var planDoneCmd = &cobra.Command{
	Use:   "done BLOCK_ID",
	Short: "Toggle a block's completion",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanDone,
}

var planRmCmd = &cobra.Command{
	Use:   "rm BLOCK_ID",
	Short: "Remove a block from the plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanRm,
}

var planClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the whole day plan",
	RunE:  runPlanClear,
}

var planGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a day plan from your profile",
	RunE:  runPlanGenerate,
}

func runPlanAdd(cmd *cobra.Command, args []string) error {
	d, _, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	var out gamify.Outcome
	err = d.Session.Apply(func(st domain.UserState) (domain.UserState, error) {
		next, o, err := gamify.AddBlock(st, args[0], args[1], args[2], domain.BlockType(planBlockType), time.Now())
		out = o
		return next, err
	})
	if err != nil {
		return err
	}
	d.Session.Flush()

	fmt.Printf("Added block %q %s–%s\n", args[0], args[1], args[2])
	reportOutcome(out)
	return nil
}

func runPlanList(cmd *cobra.Command, args []string) error {
	d, st, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if len(st.DayPlan.PlannedBlocks) == 0 {
		fmt.Println("No plan for today. Run 'twin plan add' or 'twin plan generate'.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tTITLE\tTYPE\tDONE")
	for _, b := range st.DayPlan.PlannedBlocks {
		mark := ""
		if actual, ok := st.DayPlan.FindActual(b.ID); ok && actual.IsCompleted {
			mark = "done"
		}
		fmt.Fprintf(w, "%s\t%s–%s\t%s\t%s\t%s\n", b.ID, b.StartTime, b.EndTime, b.Title, b.Type, mark)
	}
	return w.Flush()
}

func runPlanDone(cmd *cobra.Command, args []string) error {
	d, _, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	var out gamify.Outcome
	err = d.Session.Apply(func(st domain.UserState) (domain.UserState, error) {
		next, o, err := gamify.ToggleBlock(st, args[0], time.Now())
		out = o
		return next, err
	})
	if err != nil {
		return err
	}
	d.Session.Flush()

	if out.XPAwarded > 0 {
		fmt.Printf("Block toggled (+%d XP)\n", out.XPAwarded)
	} else {
		fmt.Println("Block toggled")
	}
	reportOutcome(out)
	return nil
}

func runPlanRm(cmd *cobra.Command, args []string) error {
	d, _, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	err = d.Session.Apply(func(st domain.UserState) (domain.UserState, error) {
		return gamify.DeleteBlock(st, args[0])
	})
	if err != nil {
		return err
	}
	d.Session.Flush()

	fmt.Printf("Removed block %s\n", args[0])
	return nil
}

func runPlanClear(cmd *cobra.Command, args []string) error {
	if !confirm("Clear the whole day plan?") {
		fmt.Println("Aborted.")
		return nil
	}

	d, _, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	err = d.Session.Apply(func(st domain.UserState) (domain.UserState, error) {
		return gamify.ClearPlan(st), nil
	})
	if err != nil {
		return err
	}
	d.Session.Flush()

	fmt.Println("Day plan cleared.")
	return nil
}

func runPlanGenerate(cmd *cobra.Command, args []string) error {
	d, st, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if d.Suggest == nil {
		return fmt.Errorf("no suggestion endpoint configured; set [suggest] url in config.toml")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	goals := []string{"a balanced, productive day"}
	if planGoals != "" {
		goals = strings.Split(planGoals, ",")
	}
	blocks, err := d.Suggest.GeneratePlan(ctx, goals, "", st.Preferences.Language)
	if err != nil {
		return err
	}

	var out gamify.Outcome
	err = d.Session.Apply(func(st domain.UserState) (domain.UserState, error) {
		next, o := gamify.ApplyGeneratedPlan(st, blocks, time.Now())
		out = o
		return next, nil
	})
	if err != nil {
		return err
	}
	d.Session.Flush()

	fmt.Printf("Generated a plan with %d blocks.\n", len(blocks))
	reportOutcome(out)
	return runPlanList(cmd, nil)
}
