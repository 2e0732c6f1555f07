package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lipohub/tg-planner-bot/internal/cli/formatter"
	"github.com/lipohub/tg-planner-bot/internal/domain"
	"github.com/lipohub/tg-planner-bot/internal/service"
)

func newChartCmd(app *App) *cobra.Command {
	var (
		userID int64
		out    string
		limit  int
	)
	cmd := &cobra.Command{
		Use:       "chart <day|week|month|semester|year>",
		Short:     "Re-render a chart from recent history",
		ValidArgs: []string{"day", "week", "month", "semester", "year"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			graph := domain.GraphType(args[0])
			res, err := app.Charts.Rerender(cmd.Context(), userID, graph, limit)
			if errors.Is(err, service.ErrNoHistory) {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Нет недавних событий для графика. Напиши новое расписание!"))
				return nil
			}
			if err != nil {
				return err
			}
			_ = res.Wait()
			return writeChart(cmd, res.Chart, out)
		},
	}
	addUserFlags(cmd.Flags(), &userID, &out, "User ID whose history to chart")
	cmd.Flags().IntVar(&limit, "limit", service.DefaultHistoryLimit, "How many recent events to draw from")
	return cmd
}
