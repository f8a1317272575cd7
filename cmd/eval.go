package cmd

import (
	"github.com/homelibrary/bookworm/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Metadata extraction evaluation tools",
		Long: `Evaluation tools for measuring extraction accuracy against expected records.

Runs the pipeline over fixture books or text cases, reports per-field
accuracy, and inspects datasets and saved reports.`,
	}

	cmd.AddCommand(evalcmd.NewRunCmd(evalSetup))
	cmd.AddCommand(evalcmd.NewReportCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())

	return cmd
}

func evalSetup(cmd *cobra.Command) (*evalcmd.Setup, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	svc, _, err := buildService(cfg)
	if err != nil {
		return nil, err
	}
	return &evalcmd.Setup{
		Extractor:   svc,
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	}, nil
}
