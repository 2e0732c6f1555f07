package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lipohub/tg-planner-bot/internal/cli/formatter"
	"github.com/lipohub/tg-planner-bot/internal/service"
)

func newHistoryCmd(app *App) *cobra.Command {
	var (
		userID int64
		limit  int
		graphs bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent requests or saved charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if graphs {
				rows, err := app.Charts.Graphs(cmd.Context(), userID, limit)
				if err != nil {
					return err
				}
				fmt.Fprint(w, formatter.FormatGraphs(rows))
				return nil
			}
			rows, err := app.Charts.History(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(w, formatter.FormatHistory(rows))
			return nil
		},
	}
	addUserFlags(cmd.Flags(), &userID, nil, "User ID whose history to show")
	cmd.Flags().IntVar(&limit, "limit", service.DefaultHistoryLimit, "Maximum rows to show")
	cmd.Flags().BoolVar(&graphs, "graphs", false, "List saved charts instead of requests")
	return cmd
}
