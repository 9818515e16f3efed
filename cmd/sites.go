package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/countymap/internal/sites"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Population-weighted location analysis over contiguous-US counties",
}

var sitesClosestCmd = &cobra.Command{
	Use:   "closest <geoid> [geoid ...]",
	Short: "Sum county populations onto their nearest destination",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(cmd.Context())
		if err != nil {
			return err
		}
		candidates, err := sites.Prepare(records)
		if err != nil {
			return err
		}

		totals, err := sites.ClosestPopulation(candidates, args)
		if err != nil {
			return eris.Wrap(err, "sites closest")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "GEOID\tPOPULATION")
		for i, id := range args {
			_, _ = fmt.Fprintf(w, "%s\t%d\n", id, totals[i])
		}
		return w.Flush()
	},
}

var sitesBestCmd = &cobra.Command{
	Use:   "best",
	Short: "Find the k county centroids with the lowest population-weighted distance",
	Long: `Scores every k-combination of contiguous-US county centroids. Each county
contributes distance_km² × population to its nearest chosen centroid, squared
again unless --no-square is set. The search is exhaustive, so keep k small.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, _ := cmd.Flags().GetInt("k")
		noSquare, _ := cmd.Flags().GetBool("no-square")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if concurrency == 0 {
			concurrency = cfg.Sites.Concurrency
		}

		records, err := loadRecords(ctx)
		if err != nil {
			return err
		}
		candidates, err := sites.Prepare(records)
		if err != nil {
			return err
		}

		res, err := sites.Best(ctx, candidates, k, sites.Options{
			Concurrency: concurrency,
			ChunkSize:   cfg.Sites.ChunkSize,
			Squared:     !noSquare,
		})
		if err != nil {
			return eris.Wrap(err, "sites best")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "GEOID\tSTATE\tCENTROID\tPOPULATION")
		for _, s := range res.Sites {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", s.GEOID, s.State, s.Point, s.Population)
		}
		_, _ = fmt.Fprintf(w, "cost\t%g\t(%d combinations)\t\n", res.Cost, res.Evaluated)
		return w.Flush()
	},
}

func init() {
	sitesBestCmd.Flags().Int("k", 1, "number of locations to choose")
	sitesBestCmd.Flags().Bool("no-square", false, "sum weighted distances without squaring them")
	sitesBestCmd.Flags().Int("concurrency", 0, "parallel evaluators (default sites.concurrency or GOMAXPROCS)")

	sitesCmd.AddCommand(sitesClosestCmd, sitesBestCmd)
	rootCmd.AddCommand(sitesCmd)
}
