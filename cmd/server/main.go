package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cargodash/internal/common"
	"cargodash/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(config.New()).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd wires every subcommand to one viper instance. Running the root
// command without a subcommand serves the dashboard.
func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "cargodash",
		Short: "Cargo voyage dashboard",
		Long: `cargodash loads a spreadsheet of cargo voyages and serves a dashboard:
a world map of load and discharge ports with route arrows, plus bar, line
and pie charts of intake, filterable by port and commodity.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := config.ReadFile(v, cfgFile); err != nil {
				return err
			}
			return common.SetupLogger(v.GetString("logging.level"), v.GetString("logging.format"))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./cargodash.yaml or $HOME/.config/cargodash/cargodash.yaml)")
	flags.String("data", "", "voyage spreadsheet (.xlsx or .csv)")
	flags.String("sheet", "", "sheet holding the voyages")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")
	flags.Int("top", 0, "groups kept before the rest is folded into Other")

	_ = v.BindPFlag("data.path", flags.Lookup("data"))
	_ = v.BindPFlag("data.sheet", flags.Lookup("sheet"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = v.BindPFlag("dashboard.top_n", flags.Lookup("top"))

	serve := serveCmd(v)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve)
	root.AddCommand(summaryCmd(v))
	root.AddCommand(exportCmd(v))
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cargodash %s\n", version)
		},
	}
}

// loadConfig decodes and validates the settings once flags are parsed.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	slog.Debug("configuration loaded", "data", cfg.Data.Path, "sheet", cfg.Data.Sheet)
	return cfg, nil
}
