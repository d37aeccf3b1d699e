package analytics

import (
	"math"

	"github.com/mferrier/booktracker/internal/entities"
)

// DNFStats summarizes abandoned books.
type DNFStats struct {
	Total      int             `json:"total"`
	Percentage int             `json:"percentage"`
	Books      []entities.Book `json:"books,omitempty"`
}

func ComputeDNFStats(books []entities.Book) DNFStats {
	var s DNFStats
	for _, b := range books {
		if b.DidNotFinish {
			s.Total++
			s.Books = append(s.Books, b)
		}
	}
	if len(books) > 0 {
		s.Percentage = int(math.Round(float64(s.Total) / float64(len(books)) * 100))
	}
	return s
}

// PublishingStats counts the review-publishing flags across a collection.
type PublishingStats struct {
	ReviewDrafted   int `json:"review_drafted"`
	PostedGoodreads int `json:"posted_goodreads"`
	PostedInstagram int `json:"posted_instagram"`
	PostedIgBbr     int `json:"posted_ig_bbr"`
	PostedBlog      int `json:"posted_blog"`
	PostedAmazon    int `json:"posted_amazon"`
	AmazonApproved  int `json:"amazon_approved"`
}

func ComputePublishingStats(books []entities.Book) PublishingStats {
	var s PublishingStats
	for _, b := range books {
		if b.ReviewDrafted {
			s.ReviewDrafted++
		}
		if b.PostedGoodreads {
			s.PostedGoodreads++
		}
		if b.PostedInstagram {
			s.PostedInstagram++
		}
		if b.PostedIgBbr {
			s.PostedIgBbr++
		}
		if b.PostedBlog {
			s.PostedBlog++
		}
		if b.PostedAmazon {
			s.PostedAmazon++
		}
		if b.AmazonApproved {
			s.AmazonApproved++
		}
	}
	return s
}

// CountByFormat tallies books per format; missing formats count as physical.
func CountByFormat(books []entities.Book) map[entities.Format]int {
	counts := map[entities.Format]int{}
	for _, b := range books {
		f := b.Format
		if f == "" {
			f = entities.DefaultFormat
		}
		counts[f]++
	}
	return counts
}

// CountBySource tallies books per acquisition source; empty sources count
// as "Unknown".
func CountBySource(books []entities.Book) map[string]int {
	counts := map[string]int{}
	for _, b := range books {
		src := b.Source
		if src == "" {
			src = "Unknown"
		}
		counts[src]++
	}
	return counts
}

// GoalProgress relates a year's book count to its reading goal.
type GoalProgress struct {
	Target    int `json:"target"`
	Completed int `json:"completed"`
	Percent   int `json:"percent"`
}

func ComputeGoalProgress(goal *entities.ReadingGoal, completed int) *GoalProgress {
	if goal == nil {
		return nil
	}
	p := &GoalProgress{Target: goal.Target, Completed: completed}
	if goal.Target > 0 {
		p.Percent = int(math.Round(float64(completed) / float64(goal.Target) * 100))
	}
	return p
}
