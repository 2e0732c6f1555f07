package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lipohub/tg-planner-bot/internal/service"
)

// App holds the services and terminal hooks CLI commands run against.
type App struct {
	Planning service.PlanningService
	Goals    service.GoalService
	Charts   service.ChartService

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
	// Prompt asks for free text; nil means the huh form.
	Prompt func(title, placeholder string) (string, error)
	// Serve runs the HTTP server until ctx is done.
	Serve func(ctx context.Context) error
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) prompt(title, placeholder string) (string, error) {
	if a.Prompt != nil {
		return a.Prompt(title, placeholder)
	}
	return huhPrompt(title, placeholder)
}

// NewRootCmd creates the top-level "planbot" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "planbot",
		Short:         "Turn free-text plans into schedules and charts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to a YAML config file")

	root.AddCommand(
		newPlanCmd(app),
		newGoalCmd(app),
		newChartCmd(app),
		newHistoryCmd(app),
		newServeCmd(app),
	)
	return root
}
