package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mferrier/booktracker/internal/config"
	"github.com/mferrier/booktracker/internal/importer"
	"github.com/mferrier/booktracker/internal/metadata"
	"github.com/mferrier/booktracker/internal/storage"
)

// ImportCommand runs the CSV import pipeline against a local file.
type ImportCommand struct {
	FilePath          string
	IncludeDuplicates bool
	FetchCovers       bool
	ResultsPath       string
	DryRun            bool
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the CSV file to import (required)")
	fs.BoolVar(&cmd.IncludeDuplicates, "include-duplicates", false, "Import rows flagged as duplicates too")
	fs.BoolVar(&cmd.FetchCovers, "fetch-covers", false, "Look up missing cover images via Google Books")
	fs.StringVar(&cmd.ResultsPath, "results", "", "Write the annotated results CSV to this path")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show the duplicate split without importing")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books from a CSV file into the collection.\n\n")
		fmt.Fprintf(os.Stderr, "Rows matching an existing book by title, author and year are skipped\n")
		fmt.Fprintf(os.Stderr, "unless -include-duplicates is given.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	return nil
}

func (cmd *ImportCommand) Run() error {
	data, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("read CSV file: %w", err)
	}

	cfg := config.NewConfig()
	client, closeClient, err := openClient(cfg)
	if err != nil {
		return err
	}
	defer closeClient()
	books := storage.NewBookStore(client)

	opts := []importer.Option{
		importer.WithCoverDelay(cfg.GoogleBooks.CoverDelay),
		importer.WithProgress(func(current, total int) {
			fmt.Printf("\rFetching covers... %d/%d", current, total)
			if current == total {
				fmt.Println()
			}
		}),
	}
	fetchCovers := cmd.FetchCovers
	if fetchCovers {
		if cfg.GoogleBooks.APIKey == "" {
			fmt.Println("GOOGLE_BOOKS_API_KEY is not set, skipping cover lookup")
			fetchCovers = false
		} else {
			opts = append(opts, importer.WithCoverFetcher(metadata.NewGoogleBooksClient(cfg.GoogleBooks.APIKey)))
		}
	}

	pipeline := importer.NewPipeline(books, opts...)
	if err := pipeline.Upload(string(data)); err != nil {
		return err
	}

	fmt.Printf("Found %d new books, %d possible duplicates\n",
		len(pipeline.Unique()), len(pipeline.Duplicates()))
	for _, row := range pipeline.Duplicates() {
		fmt.Printf("  duplicate: %s by %s\n", row.Book.Title, row.Book.Author)
	}

	if cmd.DryRun {
		pipeline.Abort()
		return nil
	}

	if cmd.IncludeDuplicates {
		all := make([]int, len(pipeline.Duplicates()))
		for i := range all {
			all[i] = i
		}
		if err := pipeline.SelectDuplicates(all); err != nil {
			return err
		}
	}

	summary, err := pipeline.Import(context.Background(), fetchCovers)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d books (%d skipped, %d errors", summary.Added, summary.Skipped, summary.Errors)
	if fetchCovers {
		fmt.Printf(", %d covers found", summary.CoversFound)
	}
	fmt.Println(")")
	for _, re := range summary.RowErrors {
		fmt.Printf("  row %d: %s\n", re.Index+1, re.Message)
	}

	if cmd.ResultsPath != "" {
		results, err := pipeline.ResultsCSV()
		if err != nil {
			return fmt.Errorf("build results CSV: %w", err)
		}
		if err := os.WriteFile(cmd.ResultsPath, []byte(results), 0o644); err != nil {
			return fmt.Errorf("write results CSV: %w", err)
		}
		fmt.Printf("Results written to %s\n", cmd.ResultsPath)
	}
	return nil
}
