package main

import (
	"fmt"
	"io"
	"strconv"

	"cargodash/internal/engine"
	"cargodash/internal/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	otherStyle  = cellStyle.Foreground(lipgloss.Color("8"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

// filterFlags holds the --load-port/--disch-port/--commodity values.
type filterFlags struct {
	loadPorts   []string
	dischPorts  []string
	commodities []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	// Repeat a flag for several values; names may contain commas.
	cmd.Flags().StringArrayVar(&f.loadPorts, "load-port", nil, "keep voyages from this load port (repeatable)")
	cmd.Flags().StringArrayVar(&f.dischPorts, "disch-port", nil, "keep voyages to this discharge port (repeatable)")
	cmd.Flags().StringArrayVar(&f.commodities, "commodity", nil, "keep voyages carrying this commodity (repeatable)")
}

func (f *filterFlags) selection() engine.Selection {
	return engine.Selection{
		models.ColLoadPort:  f.loadPorts,
		models.ColDischPort: f.dischPorts,
		models.ColCommodity: f.commodities,
	}
}

func summaryCmd(v *viper.Viper) *cobra.Command {
	var (
		filters filterFlags
		by      string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print intake totals grouped by a column",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			ds, err := engine.Load(cfg.Data.Path, cfg.Data.Sheet)
			if err != nil {
				return err
			}
			view, err := engine.Filter(ds, filters.selection())
			if err != nil {
				return err
			}
			items, err := view.Aggregate(by, cfg.Dashboard.TopN)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), view, by, items)
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVar(&by, "by", models.ColCommodity, "column to group by (load_port, disch_port, commodity_name)")
	return cmd
}

func printSummary(w io.Writer, view engine.View, by string, items []models.AggregateItem) error {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{it.Label, strconv.FormatFloat(it.Intake, 'f', 0, 64), strconv.Itoa(it.Voyages)}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(by, "intake, t", "voyages").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(items) && items[row].Other:
				return otherStyle
			}
			return cellStyle
		})

	title := titleStyle.Render(fmt.Sprintf("%d voyages, %.0f t", view.Len(), view.TotalIntake()))
	_, err := fmt.Fprintf(w, "%s\n%s\n", title, t.Render())
	return err
}
