package plagiarismguard

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print corpus and LSH index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadCheckerConfig()
	if err != nil {
		return err
	}

	checker, closeChecker, err := newChecker(cfg, log)
	if err != nil {
		return err
	}
	defer closeChecker()

	stats := checker.Stats()
	fmt.Printf("documents: %d\n", stats.Count)
	fmt.Printf("threshold: %.2f\n", stats.Threshold)
	fmt.Printf("permutations: %d\n", stats.P)
	return nil
}
