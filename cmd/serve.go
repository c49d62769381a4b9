package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/housedash/internal/metrics"
	"github.com/KaramelBytes/housedash/internal/query"
	"github.com/KaramelBytes/housedash/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the dataset and serve the dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") && serveAddr != "" {
			cfg.ListenAddr = serveAddr
		}
		cat, err := loadCatalog(cfg.DataPath)
		if err != nil {
			return err
		}
		srv, err := server.New(cat, serverConfig(), metrics.New())
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

func serverConfig() server.Config {
	c := server.DefaultConfig()
	c.Addr = cfg.ListenAddr
	c.ChartWidth = cfg.ChartWidth
	c.ChartHeight = cfg.ChartHeight
	c.HistogramBins = cfg.HistogramBins
	c.Defaults = configuredSelection()
	c.SessionTTL = cfg.SessionTTL()
	c.ReadTimeout = cfg.ReadTimeout()
	c.WriteTimeout = cfg.WriteTimeout()
	c.ShutdownTimeout = cfg.ShutdownTimeout()
	return c
}

func configuredSelection() query.Selection {
	return query.Selection{
		Categorical: cfg.DefaultCategorical,
		Comparison:  cfg.DefaultComparison,
		X:           cfg.DefaultX,
		Y:           cfg.DefaultY,
	}.Merge(query.DefaultSelection())
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
}
