package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mferrier/booktracker/internal/analytics"
	"github.com/mferrier/booktracker/internal/config"
	"github.com/mferrier/booktracker/internal/storage"
)

// StatsCommand prints a reading summary for one year.
type StatsCommand struct {
	Year int
}

func NewStatsCommand() *StatsCommand {
	return &StatsCommand{}
}

func (cmd *StatsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)

	fs.IntVar(&cmd.Year, "year", time.Now().Year(), "Reporting year")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s stats [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print reading statistics for a year.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *StatsCommand) Run() error {
	cfg := config.NewConfig()
	client, closeClient, err := openClient(cfg)
	if err != nil {
		return err
	}
	defer closeClient()

	all, err := storage.NewBookStore(client).Books()
	if err != nil {
		return fmt.Errorf("load books: %w", err)
	}
	books := analytics.FilterByYear(all, cmd.Year)
	totals := analytics.ComputeTotals(books)

	fmt.Printf("Reading stats for %d\n", cmd.Year)
	fmt.Printf("  Books read:    %d\n", totals.Count)
	fmt.Printf("  Pages read:    %d (avg %d)\n", totals.Pages, totals.AveragePages)
	fmt.Printf("  Library value: %.2f\n", totals.Value)
	if pace := analytics.ReadingPace(books); pace > 0 {
		fmt.Printf("  Reading pace:  %.1f days/book\n", pace)
	}

	if authors := analytics.TopAuthors(books, 5); len(authors) > 0 {
		fmt.Println("  Top authors:")
		for _, a := range authors {
			fmt.Printf("    %-30s %d\n", a.Author, a.Count)
		}
	}
	if genres := analytics.TopGenres(books, 5); len(genres) > 0 {
		fmt.Println("  Top genres:")
		for _, g := range genres {
			fmt.Printf("    %-30s %d (%d%%)\n", g.Genre, g.Count, g.Percentage)
		}
	}

	fmt.Println("  By month:")
	for _, m := range analytics.ByMonth(books) {
		fmt.Printf("    %s %d\n", m.Month, m.Count)
	}

	if dnf := analytics.ComputeDNFStats(books); dnf.Total > 0 {
		fmt.Printf("  Did not finish: %d (%d%%)\n", dnf.Total, dnf.Percentage)
	}

	goal, err := storage.NewGoalStore(client).GetYearlyGoal(cmd.Year)
	if err != nil {
		return fmt.Errorf("load goal: %w", err)
	}
	if progress := analytics.ComputeGoalProgress(goal, totals.Count); progress != nil {
		fmt.Printf("  Goal: %d/%d (%d%%)\n", progress.Completed, progress.Target, progress.Percent)
	}
	return nil
}
