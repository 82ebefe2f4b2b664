package main

import (
	"fmt"
	"log/slog"
	"os"

	"cargodash/internal/engine"
	"cargodash/internal/models"
	"cargodash/internal/report"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func exportCmd(v *viper.Viper) *cobra.Command {
	var (
		filters filterFlags
		out     string
		axis    string
		title   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered dashboard to a PDF report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			ds, err := engine.Load(cfg.Data.Path, cfg.Data.Sheet)
			if err != nil {
				return err
			}
			sel := filters.selection()
			view, err := engine.Filter(ds, sel)
			if err != nil {
				return err
			}

			in, err := report.Build(view, sel, report.Options{
				Title:    title,
				Axis:     axis,
				TopN:     cfg.Dashboard.TopN,
				LineRows: cfg.Dashboard.LineRows,
			})
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create report: %w", err)
			}
			if err := report.Write(f, in); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close report: %w", err)
			}

			slog.Info("report written", "path", out, "voyages", view.Len(), "charts", len(in.Charts))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "report.pdf", "output file")
	cmd.Flags().StringVar(&axis, "x", models.ColCommodity, "chart category axis")
	cmd.Flags().StringVar(&title, "title", "Cargo voyages", "report title")
	return cmd
}
