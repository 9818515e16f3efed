package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/countymap/internal/county"
	"github.com/sells-group/countymap/internal/dataset"
	"github.com/sells-group/countymap/internal/fetcher"
	"github.com/sells-group/countymap/internal/geo"
	"github.com/sells-group/countymap/internal/store"
	"github.com/sells-group/countymap/internal/tiger"
)

// buildOptions names the inputs of one dataset build.
type buildOptions struct {
	Shapes           string
	Population       string
	IDColumn         string
	PopulationColumn string
	Sheet            string
	SkipRows         int
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the county centroid dataset",
	Long: `Reads county boundaries (GeoJSON, TIGER/Line .shp, or the zipped shapefile) and a
population table (CSV, TSV, XLSX, or Census API JSON), computes one centroid per
county, joins the population by county GEOID, and writes the derived dataset.

Use --store to also record the build as a run in the configured database.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts := buildOptions{
			Shapes:           flagOr(cmd, "shapes", cfg.Input.Shapes),
			Population:       flagOr(cmd, "population", cfg.Input.Population),
			IDColumn:         flagOr(cmd, "id-column", cfg.Input.IDColumn),
			PopulationColumn: flagOr(cmd, "population-column", cfg.Input.PopulationColumn),
			Sheet:            flagOr(cmd, "sheet", cfg.Input.Sheet),
			SkipRows:         cfg.Input.SkipRows,
		}
		if cmd.Flags().Changed("skip-rows") {
			opts.SkipRows, _ = cmd.Flags().GetInt("skip-rows")
			cfg.Input.SkipRows = opts.SkipRows
		}
		// Census API downloads name the count column after the variable.
		if strings.EqualFold(filepath.Ext(opts.Population), ".json") && !cmd.Flags().Changed("population-column") {
			opts.PopulationColumn = cfg.Census.Variable
		}
		cfg.Input.Shapes, cfg.Input.Population = opts.Shapes, opts.Population
		if err := cfg.Validate("build"); err != nil {
			return err
		}

		out := flagOr(cmd, "out", cfg.Output.Path)
		format := flagOr(cmd, "format", cfg.Output.Format)
		persist, _ := cmd.Flags().GetBool("store")

		res, err := buildDataset(ctx, opts)
		if err != nil {
			return err
		}

		if err := dataset.Save(out, format, res.Records); err != nil {
			return eris.Wrap(err, "build: save dataset")
		}
		zap.L().Info("dataset written", zap.String("path", out), zap.Int("records", len(res.Records)))

		if !persist {
			return nil
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "build: migrate store")
		}

		run, err := store.SaveResult(ctx, st, opts.Shapes, res)
		if err != nil {
			return eris.Wrap(err, "build: store run")
		}
		zap.L().Info("run stored", zap.String("run_id", run.ID), zap.Int("records", run.Records))
		return nil
	},
}

// buildDataset runs the load, join, and diagnostics steps.
func buildDataset(ctx context.Context, opts buildOptions) (*county.Result, error) {
	log := zap.L().With(zap.String("command", "build"))

	features, err := tiger.ReadShapes(opts.Shapes)
	if err != nil {
		return nil, eris.Wrap(err, "build: read shapes")
	}
	log.Info("shapes loaded", zap.String("path", opts.Shapes), zap.Int("features", len(features)))

	table, err := fetcher.ReadTableFile(ctx, opts.Population, fetcher.TableOptions{
		Sheet:    opts.Sheet,
		SkipRows: opts.SkipRows,
	})
	if err != nil {
		return nil, eris.Wrap(err, "build: read population table")
	}
	rows, err := county.PopulationRowsFromTable(table.Header, table.Rows, opts.IDColumn, opts.PopulationColumn)
	if err != nil {
		return nil, eris.Wrap(err, "build: population columns")
	}
	pops := county.LoadPopulations(rows)
	log.Info("populations loaded", zap.String("path", opts.Population), zap.Int("counties", len(pops)))

	res, err := county.Join(features, pops, geo.PlanarCentroider{})
	if err != nil {
		return nil, eris.Wrap(err, "build: join")
	}
	res.Diagnostics.Log(log)
	return res, nil
}

// flagOr returns the string flag when set on the command line, else def.
func flagOr(cmd *cobra.Command, name, def string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return def
}

func init() {
	buildCmd.Flags().String("shapes", "", "county boundaries (.geojson, .json, .shp, .zip)")
	buildCmd.Flags().String("population", "", "population table (.csv, .tsv, .txt, .xlsx, .json)")
	buildCmd.Flags().String("id-column", "", "population table identifier column")
	buildCmd.Flags().Int("skip-rows", 0, "title rows above the population table header")
	buildCmd.Flags().String("population-column", "", "population table count column")
	buildCmd.Flags().String("sheet", "", "XLSX sheet name (default first sheet)")
	buildCmd.Flags().String("out", "", "output path (default output.path)")
	buildCmd.Flags().String("format", "", "output format: json or csv (default from extension)")
	buildCmd.Flags().Bool("store", false, "also persist the build as a run")
	rootCmd.AddCommand(buildCmd)
}
