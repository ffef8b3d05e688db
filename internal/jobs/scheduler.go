package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// archivedRetention is how long archived contact messages are kept before
// the nightly purge removes them.
const archivedRetention = 90 * 24 * time.Hour

// ContactStore is the slice of the contact repository the scheduler needs.
type ContactStore interface {
	PurgeArchivedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Scheduler struct {
	cron     *cron.Cron
	contacts ContactStore
}

func NewScheduler(contacts ContactStore) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		contacts: contacts,
	}
}

// Start registers the nightly jobs (12:00 AM).
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc("0 0 0 * * *", s.purgeArchivedContacts)
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Println("Cron scheduler started (contact retention purge nightly at 12:00AM)")
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) purgeArchivedContacts() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-archivedRetention)
	removed, err := s.contacts.PurgeArchivedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("Nightly contact purge failed: %v", err)
		return
	}
	log.Printf("Nightly contact purge removed %d archived messages", removed)
}
