package plagiarismguard

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soundprediction/plagiarismguard/pkg/corpus"
)

var (
	indexDocID      string
	indexFileType   string
	indexTitle      string
	indexAuthor     string
	indexUniversity string
	indexYear       int
)

var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Add a document to the corpus",
	Long: `Index extracts, normalizes, shingles, and MinHash-signs a document,
then inserts it into the LSH retrieval index and the on-disk corpus
store under --doc-id (or the file path as given if --doc-id is omitted).`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().StringVar(&indexDocID, "doc-id", "", "document ID (defaults to the file path as given)")
	indexCmd.Flags().StringVar(&indexFileType, "type", "txt", "file type: txt, tex, pdf, docx")
	indexCmd.Flags().StringVar(&indexTitle, "title", "", "document title metadata")
	indexCmd.Flags().StringVar(&indexAuthor, "author", "", "document author metadata")
	indexCmd.Flags().StringVar(&indexUniversity, "university", "", "document university metadata")
	indexCmd.Flags().IntVar(&indexYear, "year", 0, "document year metadata")
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadCheckerConfig()
	if err != nil {
		return err
	}

	checker, closeChecker, err := newChecker(cfg, log)
	if err != nil {
		return err
	}
	defer closeChecker()

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	docID := indexDocID
	if docID == "" {
		docID = path
	}

	meta, err := checker.IndexDocument(context.Background(), f, fileTypeFromFlag(indexFileType), docID, corpus.Metadata{
		Title:      indexTitle,
		Author:     indexAuthor,
		University: indexUniversity,
		Year:       indexYear,
	})
	if err != nil {
		return fmt.Errorf("failed to index %q: %w", path, err)
	}

	fmt.Printf("Indexed %q as %q (title=%q)\n", path, docID, meta.Title)
	return nil
}
