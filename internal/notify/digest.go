package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/industryview/industryview/internal/sprint"
	"gorm.io/gorm"
)

// DigestOpts holds parameters for creating a Digest.
type DigestOpts struct {
	DB        *gorm.DB
	Notifier  Notifier
	ProjectID uint   // 0 covers every project
	Cron      string // 5-field schedule
	Now       func() time.Time
}

// Digest posts the progress of every active sprint on a cron schedule.
type Digest struct {
	db        *gorm.DB
	notifier  Notifier
	projectID uint
	cron      string
	now       func() time.Time
}

// NewDigest validates opts and creates a Digest.
func NewDigest(opts DigestOpts) (*Digest, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("notify: db is required")
	}
	if opts.Notifier == nil {
		return nil, fmt.Errorf("notify: notifier is required")
	}
	if opts.Cron != "" {
		if _, err := cronParser.Parse(opts.Cron); err != nil {
			return nil, fmt.Errorf("notify: digest cron %q: %w", opts.Cron, err)
		}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Digest{
		db:        opts.DB,
		notifier:  opts.Notifier,
		projectID: opts.ProjectID,
		cron:      opts.Cron,
		now:       now,
	}, nil
}

// RunOnce posts one digest per active sprint and returns how many were
// sent. A failing sprint does not stop the others; their errors are joined.
func (d *Digest) RunOnce(ctx context.Context) (int, error) {
	db := d.db.WithContext(ctx)
	sprints, err := sprint.ListActive(db, d.projectID)
	if err != nil {
		return 0, fmt.Errorf("notify: digest: %w", err)
	}

	sent := 0
	var errs []error
	for _, s := range sprints {
		summary, err := sprint.Chart(db, s.ID, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("notify: digest sprint %d: %w", s.ID, err))
			continue
		}
		if err := d.notifier.Send(ctx, FormatDigest(s, *summary, d.now())); err != nil {
			errs = append(errs, fmt.Errorf("notify: digest sprint %d: %w", s.ID, err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

// Run fires RunOnce on the cron schedule until ctx is cancelled.
func (d *Digest) Run(ctx context.Context) error {
	if d.cron == "" {
		return fmt.Errorf("notify: digest cron is not set")
	}

	timer := time.NewTimer(nextCronDuration(d.cron, d.now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			n, err := d.RunOnce(ctx)
			if err != nil {
				log.Printf("notify: digest: %v", err)
			}
			log.Printf("notify: digest posted for %d sprint(s)", n)
			timer.Reset(nextCronDuration(d.cron, d.now()))
		}
	}
}
