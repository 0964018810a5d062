package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/cstkit/internal/history"
	"github.com/msto63/cstkit/internal/render"
)

var (
	historyLimit    int
	historyFailures bool
	historyContains string
	historySince    time.Duration
	pruneOlderThan  time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded evaluations",
	Long: `Lists evaluations recorded with --history or by the server.

Examples:
  cstkit history --limit 20
  cstkit history --failures --since 24h
  cstkit history stats
  cstkit history prune --older-than 720h`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the history store",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old evaluations",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	historyCmd.Flags().BoolVar(&historyFailures, "failures", false, "only failed runs")
	historyCmd.Flags().StringVar(&historyContains, "contains", "", "only inputs containing this text")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only runs newer than this age")
	historyPruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 30*24*time.Hour, "delete runs older than this age")
}

func openStore() (history.Store, error) {
	e, err := setup()
	if err != nil {
		return nil, err
	}
	return e.openHistory(true)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	filter := history.Filter{
		OnlyFailures: historyFailures,
		Contains:     historyContains,
		Limit:        historyLimit,
	}
	if historySince > 0 {
		filter.Since = time.Now().UTC().Add(-historySince)
	}

	entries, err := store.Query(cmd.Context(), filter)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No recorded evaluations.")
		return nil
	}
	fmt.Println(render.History(entries))
	return nil
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Total:    %d\n", stats.Total)
	fmt.Printf("Failures: %d\n", stats.Failures)
	if stats.Total > 0 {
		fmt.Printf("Oldest:   %s\n", stats.Oldest.Local().Format(time.RFC3339))
		fmt.Printf("Newest:   %s\n", stats.Newest.Local().Format(time.RFC3339))
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Prune(cmd.Context(), pruneOlderThan)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d entries.\n", n)
	return nil
}
