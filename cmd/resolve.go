package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/countymap/internal/county"
	"github.com/sells-group/countymap/internal/geo"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [lon,lat ...]",
	Short: "Resolve coordinates to county records",
	Long: `Looks up the county whose stored centroid equals each "lon,lat" argument exactly.
--set looks up the counties of a built-in destination set by GEOID instead. With --tolerance-km
the closest centroid within that distance matches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setName, _ := cmd.Flags().GetString("set")
		tolerance, _ := cmd.Flags().GetFloat64("tolerance-km")

		if setName != "" && len(args) > 0 {
			return eris.New("resolve: pass either --set or coordinates, not both")
		}

		var targets []geo.Point
		if setName == "" {
			var err error
			if targets, err = parseTargets(args); err != nil {
				return err
			}
		}

		records, err := loadRecords(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "TARGET\tGEOID\tSTATE\tCENTROID\tPOPULATION")

		if setName != "" {
			found, missing, err := resolveSet(setName, records)
			if err != nil {
				return err
			}
			for _, rec := range found {
				writeRecordRow(w, setName, rec)
			}
			for _, id := range missing {
				_, _ = fmt.Fprintf(w, "%s\t%s\t-\t-\t-\n", setName, id)
			}
			_ = w.Flush()
			if len(missing) > 0 {
				return eris.Errorf("resolve: %d of %d counties of set %q not found", len(missing), len(found)+len(missing), setName)
			}
			return nil
		}

		var missing int
		for _, t := range targets {
			rec, ok, err := resolveOne(t, records, tolerance)
			if err != nil {
				return err
			}
			if !ok {
				missing++
				_, _ = fmt.Fprintf(w, "%s\t-\t-\t-\t-\n", t)
				continue
			}
			writeRecordRow(w, t.String(), rec)
		}
		_ = w.Flush()

		if missing > 0 {
			return eris.Errorf("resolve: %d of %d coordinates matched no county", missing, len(targets))
		}
		return nil
	},
}

func parseTargets(args []string) ([]geo.Point, error) {
	if len(args) == 0 {
		return nil, eris.New("resolve: at least one lon,lat coordinate is required")
	}

	targets := make([]geo.Point, 0, len(args))
	for _, a := range args {
		p, err := geo.ParsePoint(a)
		if err != nil {
			return nil, eris.Wrap(err, "resolve")
		}
		targets = append(targets, p)
	}
	return targets, nil
}

func resolveSet(name string, records []county.Record) ([]county.Record, []string, error) {
	set, ok := county.DestinationSetByName(name)
	if !ok {
		return nil, nil, eris.Errorf("resolve: unknown destination set %q", name)
	}
	found, missing := set.Resolve(records)
	return found, missing, nil
}

func resolveOne(target geo.Point, records []county.Record, toleranceKM float64) (county.Record, bool, error) {
	if toleranceKM > 0 {
		return county.ResolveNearest(target, records, toleranceKM)
	}
	rec, ok := county.Resolve(target, records)
	return rec, ok, nil
}

func writeRecordRow(w io.Writer, label string, r county.Record) {
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", label, r.GEOID, r.State, r.Centroid, r.Population)
}

func init() {
	resolveCmd.Flags().String("set", "", "resolve a built-in destination set (one, two, three, one-nosquare, ...)")
	resolveCmd.Flags().Float64("tolerance-km", 0, "match the nearest centroid within this distance")
	rootCmd.AddCommand(resolveCmd)
}
