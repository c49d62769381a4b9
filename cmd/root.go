package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/housedash/internal/catalog"
	cfgpkg "github.com/KaramelBytes/housedash/internal/config"
	"github.com/KaramelBytes/housedash/internal/dataset"
	"github.com/KaramelBytes/housedash/internal/logger"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	dataPath string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "housedash",
	Short: "housedash: an interactive dashboard over a housing sales CSV",
	Long: `housedash loads a housing sales dataset (Kaggle "House Prices" layout), drops sparse
columns, classifies the rest as categorical or numerical and serves a two-tab dashboard
of comparison, count, scatter and sale price distribution charts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("no configuration loaded")
		}
		return initLogger()
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.housedash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "dataset CSV/TSV path (overrides data_path)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	if rootCmd.PersistentFlags().Changed("data") && dataPath != "" {
		cfg.DataPath = dataPath
	}
	if debug {
		cfg.LogLevel = "debug"
		cfg.LogDevelopment = true
	}
}

func initLogger() error {
	return logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.LogDevelopment,
		Encoding:    cfg.LogEncoding,
	})
}

// loadCatalog loads the configured dataset and classifies its columns.
// Load failures are returned as *dataset.LoadError.
func loadCatalog(path string) (*catalog.Catalog, error) {
	delim, err := cfg.DelimiterRune()
	if err != nil {
		return nil, err
	}
	opt := dataset.DefaultOptions()
	opt.Delimiter = delim
	opt.MissingThreshold = cfg.MissingThreshold

	log := logger.Get()
	ds, err := dataset.Load(path, opt)
	if err != nil {
		return nil, err
	}
	for _, d := range ds.Dropped() {
		log.Debug("dropped sparse column", zap.String("column", d.Name), zap.Float64("missing_fraction", d.MissingFraction))
	}
	cat, err := catalog.New(ds, cfg.NominalColumns, cfg.TargetColumn)
	if err != nil {
		return nil, err
	}
	f := cat.Features()
	log.Info("dataset loaded",
		zap.String("path", path),
		zap.Int("rows", ds.Rows()),
		zap.Int("columns", len(ds.Names())),
		zap.Int("dropped", len(ds.Dropped())),
		zap.Int("categorical", len(f.Categorical)),
		zap.Int("numerical", len(f.Numerical)),
		zap.String("target", f.Target),
	)
	return cat, nil
}
