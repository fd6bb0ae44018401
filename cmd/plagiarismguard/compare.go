package plagiarismguard

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soundprediction/plagiarismguard"
)

var (
	compareFileType1 string
	compareFileType2 string
	compareShowDiff  bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <file1> <file2>",
	Short: "Compare two documents directly for similarity",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&compareFileType1, "type1", "txt", "file type of file1: txt, tex, pdf, docx")
	compareCmd.Flags().StringVar(&compareFileType2, "type2", "txt", "file type of file2: txt, tex, pdf, docx")
	compareCmd.Flags().BoolVar(&compareShowDiff, "diff", false, "print the aligned matching segments")
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadCheckerConfig()
	if err != nil {
		return err
	}

	checker, closeChecker, err := newChecker(cfg, log)
	if err != nil {
		return err
	}
	defer closeChecker()

	path1, path2 := args[0], args[1]
	f1, err := os.Open(path1)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", path1, err)
	}
	defer f1.Close()

	f2, err := os.Open(path2)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", path2, err)
	}
	defer f2.Close()

	result, err := checker.CompareTwo(context.Background(), f1, fileTypeFromFlag(compareFileType1), f2, fileTypeFromFlag(compareFileType2))
	if err != nil {
		return fmt.Errorf("failed to compare %q and %q: %w", path1, path2, err)
	}

	fmt.Printf("%s vs %s: %.2f%% similarity (%s)\n", path1, path2, result.Similarity*100, plagiarismguard.LevelFor(result.Similarity))

	if compareShowDiff {
		text1, err := os.ReadFile(path1)
		if err != nil {
			return fmt.Errorf("failed to re-read %q for alignment: %w", path1, err)
		}
		text2, err := os.ReadFile(path2)
		if err != nil {
			return fmt.Errorf("failed to re-read %q for alignment: %w", path2, err)
		}

		aligned := checker.AlignTruncated(string(text1), string(text2), 0)
		for _, seg := range aligned.Segments {
			fmt.Printf("  [%d:%d] <-> [%d:%d] (%d runes)\n", seg.SourceStart, seg.SourceEnd, seg.QueryStart, seg.QueryEnd, seg.Length)
		}
	}
	return nil
}
