package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/countymap/internal/config"
	"github.com/sells-group/countymap/internal/county"
	"github.com/sells-group/countymap/internal/dataset"
	"github.com/sells-group/countymap/internal/store"
)

var cfg *config.Config

var (
	cfgFile  string
	dataPath string
	runID    string
)

var rootCmd = &cobra.Command{
	Use:   "countymap",
	Short: "County centroid and population dataset for proportional-symbol maps",
	Long: "Joins Census county boundaries with population counts into a compact centroid dataset, " +
		"projects it onto a contiguous-US Albers map, and resolves coordinates back to counties.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "derived dataset to read (default output.path)")
	rootCmd.PersistentFlags().StringVar(&runID, "run", "", `read records from a stored run ("latest" or a run ID) instead of --data`)
}

// loadRecords reads the derived dataset from --run or --data.
func loadRecords(ctx context.Context) ([]county.Record, error) {
	if runID != "" {
		return loadRunRecords(ctx, runID)
	}

	path := dataPath
	if path == "" {
		path = cfg.Output.Path
	}
	records, err := dataset.Load(path)
	if err != nil {
		return nil, eris.Wrap(err, "load dataset")
	}
	zap.L().Debug("dataset loaded", zap.String("path", path), zap.Int("records", len(records)))
	return records, nil
}

func loadRunRecords(ctx context.Context, id string) ([]county.Record, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return nil, err
	}

	if id == "latest" {
		run, err := st.LatestRun(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "load latest run")
		}
		if run == nil {
			return nil, eris.New("no runs stored yet")
		}
		id = run.ID
	}

	records, err := st.ListRecords(ctx, id, store.RecordFilter{})
	if err != nil {
		return nil, eris.Wrapf(err, "load run %s", id)
	}
	return records, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
