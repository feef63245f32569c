package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/barkshad/Real-estate/internal/config"
	"github.com/barkshad/Real-estate/internal/models"
	"github.com/barkshad/Real-estate/internal/search"
	"github.com/robfig/cron/v3"
)

// ListingSource returns every stored listing
type ListingSource interface {
	AllListings(ctx context.Context) ([]models.Property, error)
}

// Publisher pushes a fresh snapshot to live subscribers
type Publisher interface {
	Publish()
}

// Scheduler runs the periodic maintenance jobs: a search reindex and a
// feed republish for stores that cannot push changes themselves.
type Scheduler struct {
	cron     *cron.Cron
	listings ListingSource
	indexer  search.Indexer
	feeds    []Publisher
	config   *config.Config

	mu        sync.Mutex
	isRunning bool
}

func NewScheduler(cfg *config.Config, listings ListingSource, indexer search.Indexer, feeds ...Publisher) *Scheduler {
	loc := time.Local
	if cfg.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = l
		} else {
			log.Printf("Scheduler: unknown timezone %q, using local time", cfg.Timezone)
		}
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		listings: listings,
		indexer:  indexer,
		feeds:    feeds,
		config:   cfg,
	}
}

// Start registers the jobs and starts the cron runner. An empty schedule
// disables its job.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Search.Enabled && s.config.Search.ReindexSchedule != "" {
		_, err := s.cron.AddFunc(s.config.Search.ReindexSchedule, func() {
			log.Println("Scheduler: Starting reindex job...")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if n, err := s.Reindex(ctx); err != nil {
				log.Printf("Scheduler: Reindex failed: %v", err)
			} else {
				log.Printf("Scheduler: Reindexed %d listings", n)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid reindex schedule %q: %w", s.config.Search.ReindexSchedule, err)
		}
	}

	if s.config.Feed.RepublishSchedule != "" && len(s.feeds) > 0 {
		_, err := s.cron.AddFunc(s.config.Feed.RepublishSchedule, s.Republish)
		if err != nil {
			return fmt.Errorf("invalid republish schedule %q: %w", s.config.Feed.RepublishSchedule, err)
		}
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with %d jobs", len(s.cron.Entries()))
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

// Reindex replaces the search index with the stored listings
func (s *Scheduler) Reindex(ctx context.Context) (int, error) {
	props, err := s.listings.AllListings(ctx)
	if err != nil {
		return 0, fmt.Errorf("load listings: %w", err)
	}
	if err := s.indexer.Reindex(props); err != nil {
		return 0, err
	}
	return len(props), nil
}

// Republish reloads every feed for its current subscribers
func (s *Scheduler) Republish() {
	for _, f := range s.feeds {
		f.Publish()
	}
}
