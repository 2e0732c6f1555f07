package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lipohub/tg-planner-bot/internal/cli/formatter"
)

func newGoalCmd(app *App) *cobra.Command {
	var (
		userID int64
		out    string
	)
	cmd := &cobra.Command{
		Use:   "goal <text...>",
		Short: "Plan the steps toward a goal and chart its progress",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))

			stop := app.spinner(cmd, "Grok составляет план достижения цели...")
			res, err := app.Goals.PlanGoal(cmd.Context(), userID, text)
			stop()
			if err != nil {
				return err
			}
			_ = res.Wait()

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n\nЦель: %s\n\n", formatter.Bold("План цели готов!"), text)
			fmt.Fprint(w, formatter.FormatPlan(res.Plan, res.Source))
			if res.Chart == nil {
				return nil
			}
			return writeChart(cmd, *res.Chart, out)
		},
	}
	addUserFlags(cmd.Flags(), &userID, &out, "User ID the goal belongs to")
	return cmd
}
