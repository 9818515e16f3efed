package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/countymap/internal/county"
	"github.com/sells-group/countymap/internal/dataset"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Count records per region and keep the contiguous-US counties",
	Long: `Classifies every record by state: Alaska (02), Hawaii (15), territories (above 56),
and the contiguous states. Prints the counts; with --out, writes the contiguous
records as a new dataset.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		records, err := loadRecords(cmd.Context())
		if err != nil {
			return err
		}

		formatRegionCounts(cmd.OutOrStdout(), county.CountByRegion(records))

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			return nil
		}
		kept := county.FilterContiguous(records)
		if err := dataset.Save(out, "", kept); err != nil {
			return eris.Wrap(err, "filter: save")
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d contiguous records to %s\n", len(kept), out)
		return nil
	},
}

// formatRegionCounts writes a region/count table sorted by region name.
func formatRegionCounts(out io.Writer, counts map[string]int) {
	regions := make([]string, 0, len(counts))
	total := 0
	for r, n := range counts {
		regions = append(regions, r)
		total += n
	}
	sort.Strings(regions)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REGION\tCOUNTIES")
	for _, r := range regions {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", r, counts[r])
	}
	_, _ = fmt.Fprintf(w, "total\t%d\n", total)
	_ = w.Flush()
}

func init() {
	filterCmd.Flags().String("out", "", "write contiguous records to this path")
	rootCmd.AddCommand(filterCmd)
}
