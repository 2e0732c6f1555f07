package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lipohub/tg-planner-bot/internal/cli/formatter"
	"github.com/lipohub/tg-planner-bot/internal/domain"
)

const (
	defaultUserID   = 1
	planPromptTitle = "Что запланируем?"
	planPlaceholder = "Завтра в 10 физика, в 18 спортзал"
)

var errNoText = errors.New("no text given: pass it as arguments or run in a terminal")

func newPlanCmd(app *App) *cobra.Command {
	var (
		userID int64
		out    string
	)
	cmd := &cobra.Command{
		Use:   "plan [text...]",
		Short: "Turn free text into a plan and a chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				if !app.interactive() {
					return errNoText
				}
				var err error
				if text, err = app.prompt(planPromptTitle, planPlaceholder); err != nil {
					return err
				}
			}

			stop := app.spinner(cmd, "Grok анализирует твой текст...")
			res, err := app.Planning.HandleText(cmd.Context(), userID, text)
			stop()
			if err != nil {
				return err
			}
			_ = res.Wait()

			w := cmd.OutOrStdout()
			fmt.Fprint(w, formatter.FormatPlan(res.Plan, res.Source))
			if res.Chart != nil {
				return writeChart(cmd, *res.Chart, out)
			}
			return nil
		},
	}
	addUserFlags(cmd.Flags(), &userID, &out, "User ID the plan belongs to")
	return cmd
}

func (a *App) spinner(cmd *cobra.Command, msg string) func() {
	if !a.interactive() {
		return func() {}
	}
	return formatter.StartSpinner(cmd.ErrOrStderr(), msg)
}

// writeChart saves the PNG to out when given and reports the result.
func writeChart(cmd *cobra.Command, res domain.RenderResult, out string) error {
	w := cmd.OutOrStdout()
	if out == "" {
		fmt.Fprint(w, formatter.FormatChartSaved(res, formatter.Dim("сохранён в истории (planbot history --graphs)")))
		return nil
	}
	if err := os.WriteFile(out, res.Image, 0o644); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	fmt.Fprint(w, formatter.FormatChartSaved(res, out))
	return nil
}
