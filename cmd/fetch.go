package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/countymap/internal/fetcher"
	"github.com/sells-group/countymap/internal/tiger"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download Census inputs",
	Long:  "Downloads TIGER/Line county boundaries and Census API population counts.",
}

var fetchShapesCmd = &cobra.Command{
	Use:   "shapes",
	Short: "Download a national TIGER/Line boundary shapefile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		year, _ := cmd.Flags().GetInt("year")
		if year == 0 {
			year = cfg.Tiger.Year
		}
		if err := tiger.CheckVintage(year); err != nil {
			return err
		}
		product, err := tiger.LookupProduct(flagOr(cmd, "product", tiger.County.Layer))
		if err != nil {
			return err
		}
		dir := flagOr(cmd, "dir", cfg.Tiger.TempDir)

		shp, err := tiger.Download(ctx, nil, tiger.DownloadURL(product, year), dir)
		if err != nil {
			return eris.Wrap(err, "fetch shapes")
		}
		zap.L().Info("shapefile ready",
			zap.String("product", product.Layer),
			zap.Int("year", year),
			zap.String("path", shp),
		)
		cmd.Println(shp)
		return nil
	},
}

var fetchPopulationCmd = &cobra.Command{
	Use:   "population",
	Short: "Download county population counts from the Census Data API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dataset := flagOr(cmd, "dataset", cfg.Census.Dataset)
		variable := flagOr(cmd, "variable", cfg.Census.Variable)
		out := flagOr(cmd, "out", filepath.Join(cfg.Tiger.TempDir, "county_population.json"))

		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return eris.Wrap(err, "fetch population: create dir")
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
		n, err := f.DownloadToFile(ctx, fetcher.CensusURL(dataset, variable, cfg.Census.Key), out)
		if err != nil {
			return eris.Wrap(err, "fetch population")
		}
		zap.L().Info("population table ready",
			zap.String("variable", variable),
			zap.String("path", out),
			zap.Int64("bytes", n),
		)
		cmd.Println(out)
		return nil
	},
}

func init() {
	fetchShapesCmd.Flags().Int("year", 0, "TIGER/Line vintage (default tiger.year)")
	fetchShapesCmd.Flags().String("product", "county", "boundary layer: county or state")
	fetchShapesCmd.Flags().String("dir", "", "download directory (default tiger.temp_dir)")
	fetchPopulationCmd.Flags().String("dataset", "", "Census API dataset URL (default census.dataset)")
	fetchPopulationCmd.Flags().String("variable", "", "population variable (default census.variable)")
	fetchPopulationCmd.Flags().String("out", "", "output .json path")

	fetchCmd.AddCommand(fetchShapesCmd, fetchPopulationCmd)
	rootCmd.AddCommand(fetchCmd)
}
