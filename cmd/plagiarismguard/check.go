package plagiarismguard

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soundprediction/plagiarismguard"
)

var (
	checkTopK      int
	checkTopReturn int
	checkMinReport float64
	checkFileType  string
	checkAlign     bool
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check a document against the corpus for plagiarism",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	opts := plagiarismguard.DefaultCheckOptions()
	checkCmd.Flags().IntVar(&checkTopK, "top-k", opts.TopK, "number of LSH candidates to rescore")
	checkCmd.Flags().IntVar(&checkTopReturn, "top-return", opts.TopReturn, "number of matches to report")
	checkCmd.Flags().Float64Var(&checkMinReport, "min-report", opts.MinReport, "minimum estimated Jaccard to report a match")
	checkCmd.Flags().StringVar(&checkFileType, "type", "txt", "file type: txt, tex, pdf, docx")
	checkCmd.Flags().BoolVar(&checkAlign, "align", false, "show per-candidate aligned segments (only resolves matches indexed without --doc-id, whose doc_id is their original file path)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadCheckerConfig()
	if err != nil {
		return err
	}

	checker, closeChecker, err := newChecker(cfg, log)
	if err != nil {
		return err
	}
	defer closeChecker()

	if checkAlign {
		checker.WithTextFetcher(filesystemTextFetcher)
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	result, err := checker.CheckAgainstCorpus(context.Background(), f, fileTypeFromFlag(checkFileType), plagiarismguard.CheckOptions{
		TopK:      checkTopK,
		TopReturn: checkTopReturn,
		MinReport: checkMinReport,
	})
	if err != nil {
		return fmt.Errorf("failed to check %q: %w", path, err)
	}

	fmt.Printf("%s: overall similarity %.2f%% (%s)%s\n", path, result.OverallSimilarity*100, result.PlagiarismLevel, plagiarizedSuffix(result.IsPlagiarized))
	for _, m := range result.Matches {
		fmt.Printf("  %.2f%%  %s  (%s, %s %d)\n", m.EstimatedJaccard*100, m.DocID, m.Metadata.Title, m.Metadata.University, m.Metadata.Year)
		if m.Alignment != nil {
			for _, seg := range m.Alignment.Segments {
				fmt.Printf("      segment[%d:%d] <-> [%d:%d]: %q\n", seg.SourceStart, seg.SourceEnd, seg.QueryStart, seg.QueryEnd, seg.QueryText)
			}
		}
	}
	return nil
}

func plagiarizedSuffix(isPlagiarized bool) string {
	if isPlagiarized {
		return " [FLAGGED]"
	}
	return ""
}
