package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/countymap/internal/county"
	"github.com/sells-group/countymap/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Draw the proportional-symbol county map as SVG",
	Long: `Draws one circle per contiguous-US county, with area proportional to population,
and marks destinations chosen by --set (a built-in destination set) or --geoids.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("map"); err != nil {
			return err
		}
		records, err := loadRecords(cmd.Context())
		if err != nil {
			return err
		}

		setName, _ := cmd.Flags().GetString("set")
		geoids, _ := cmd.Flags().GetString("geoids")
		dests, err := renderDestinations(records, setName, splitAndTrim(geoids))
		if err != nil {
			return err
		}

		title, _ := cmd.Flags().GetString("title")
		opts := render.Options{
			Width:   cfg.Map.Width,
			Height:  cfg.Map.Height,
			Scale:   cfg.Map.Scale,
			Divisor: cfg.Map.SymbolDivisor,
			Title:   title,
		}

		path, _ := cmd.Flags().GetString("out")
		if path == "" {
			return render.Map(cmd.OutOrStdout(), records, dests, opts)
		}

		f, err := os.Create(path)
		if err != nil {
			return eris.Wrap(err, "render: create output")
		}
		if err := render.Map(f, records, dests, opts); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrap(err, "render: close output")
		}
		zap.L().Info("map written", zap.String("path", path), zap.Int("destinations", len(dests)))
		return nil
	},
}

func renderDestinations(records []county.Record, setName string, geoids []string) ([]county.Record, error) {
	switch {
	case setName != "" && len(geoids) > 0:
		return nil, eris.New("render: pass either --set or --geoids, not both")
	case setName != "":
		set, ok := county.DestinationSetByName(setName)
		if !ok {
			return nil, eris.Errorf("render: unknown destination set %q", setName)
		}
		found, missing := set.Resolve(records)
		if len(missing) > 0 {
			return nil, eris.Errorf("render: county %s of set %q not found", missing[0], setName)
		}
		return found, nil
	default:
		var found []county.Record
		for _, id := range geoids {
			r, ok := county.ByGEOID(id, records)
			if !ok {
				return nil, eris.Errorf("render: county %s not found", id)
			}
			found = append(found, r)
		}
		return found, nil
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func init() {
	renderCmd.Flags().String("set", "", "highlight a built-in destination set")
	renderCmd.Flags().String("geoids", "", "comma-separated county GEOIDs to highlight")
	renderCmd.Flags().String("title", "", "SVG title")
	renderCmd.Flags().String("out", "", "write SVG to this path instead of stdout")
	rootCmd.AddCommand(renderCmd)
}
