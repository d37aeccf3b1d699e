// Package backup periodically exports the whole library as a CSV snapshot.
package backup

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mferrier/booktracker/internal/csvcodec"
	"github.com/mferrier/booktracker/internal/storage"
	"github.com/robfig/cron/v3"
)

// Scheduler writes timestamped CSV exports of the book collection on a cron
// schedule.
type Scheduler struct {
	books    *storage.BookStore
	dir      string
	schedule string

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewScheduler(books *storage.BookStore, dir, schedule string) *Scheduler {
	return &Scheduler{
		books:    books,
		dir:      dir,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start schedules the backup job. Calling Start twice is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(); err != nil {
			log.Printf("Backup failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Backup scheduler started (schedule: %s, dir: %s)", s.schedule, s.dir)
	return nil
}

// Stop halts scheduling; an in-flight backup finishes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
}

// RunOnce writes a single backup file immediately.
func (s *Scheduler) RunOnce() error {
	books, err := s.books.Books()
	if err != nil {
		return fmt.Errorf("load books: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	name := fmt.Sprintf("book-tracker-%s.csv", time.Now().Format("2006-01-02"))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(csvcodec.Encode(books)), 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	log.Printf("Backed up %d books to %s", len(books), path)
	return nil
}
