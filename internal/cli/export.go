package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mferrier/booktracker/internal/config"
	"github.com/mferrier/booktracker/internal/csvcodec"
	"github.com/mferrier/booktracker/internal/storage"
)

// ExportCommand writes the whole library as CSV, to a file or stdout.
type ExportCommand struct {
	OutputPath string
}

func NewExportCommand() *ExportCommand {
	return &ExportCommand{}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	fs.StringVar(&cmd.OutputPath, "output", "", "Output file path (default: book-tracker-<date>.csv, \"-\" for stdout)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export the book collection as CSV.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ExportCommand) Run() error {
	cfg := config.NewConfig()
	client, closeClient, err := openClient(cfg)
	if err != nil {
		return err
	}
	defer closeClient()

	books, err := storage.NewBookStore(client).Books()
	if err != nil {
		return fmt.Errorf("load books: %w", err)
	}
	text := csvcodec.Encode(books)

	if cmd.OutputPath == "-" {
		fmt.Print(text)
		return nil
	}

	path := cmd.OutputPath
	if path == "" {
		path = fmt.Sprintf("book-tracker-%s.csv", time.Now().Format("2006-01-02"))
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	fmt.Printf("Exported %d books to %s\n", len(books), path)
	return nil
}
