package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Pruner is anything that can drop expired entries and report how many went.
type Pruner interface {
	Prune() int
}

// Scheduler periodically prunes expired cache entries so stale geocoding and
// series results do not sit in memory between requests.
type Scheduler struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	pruners   []Pruner
}

// New creates a Scheduler over the given caches.
func New(interval time.Duration, pruners ...Pruner) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
		pruners:   pruners,
	}
}

// Start schedules the pruning job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.pruners) == 0 {
		log.Println("scheduler: no caches configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		total := 0
		for _, p := range s.pruners {
			total += p.Prune()
		}
		if total > 0 {
			log.Printf("scheduler: pruned %d expired cache entries", total)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
