package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/countymap/internal/county"
	"github.com/sells-group/countymap/internal/geo"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project contiguous-US counties to screen positions",
	Long: `Projects each contiguous-US county centroid with the Albers USA conic projection
onto the configured canvas and sizes its symbol as sqrt(population)/divisor.
Writes a JSON array of {geoid, state, population, x, y, radius}.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("map"); err != nil {
			return err
		}
		records, err := loadRecords(cmd.Context())
		if err != nil {
			return err
		}

		proj := geo.NewAlbers(cfg.Map.Scale, float64(cfg.Map.Width), float64(cfg.Map.Height))
		points, err := county.Project(county.FilterContiguous(records), proj, cfg.Map.SymbolDivisor)
		if err != nil {
			return eris.Wrap(err, "project")
		}

		out := cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("out"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return eris.Wrap(err, "project: create output")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(points)
	},
}

func init() {
	projectCmd.Flags().String("out", "", "write points to this path instead of stdout")
	rootCmd.AddCommand(projectCmd)
}
