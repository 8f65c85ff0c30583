package scheduler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"solisview/internal/logger"
)

// Mode selects how the scheduled job refreshes the page data.
type Mode string

const (
	// ModeDirect calls the refresh function in-process.
	ModeDirect Mode = "direct"
	// ModeHTTP POSTs to the service's own revalidate route through the
	// configured site URL.
	ModeHTTP Mode = "http"
)

// Scheduler periodically refreshes the aggregated production data.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	interval   time.Duration
	mode       Mode
	refresh    func(ctx context.Context) error
	siteURL    string
	cronSecret string
	client     *http.Client
	log        zerolog.Logger
}

// New creates a Scheduler. siteURL and cronSecret are only used in ModeHTTP.
func New(interval time.Duration, mode Mode, refresh func(ctx context.Context) error, siteURL, cronSecret string) *Scheduler {
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		interval:   interval,
		mode:       mode,
		refresh:    refresh,
		siteURL:    siteURL,
		cronSecret: cronSecret,
		client:     &http.Client{Timeout: 30 * time.Second},
		log:        logger.New("scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		var err error
		switch s.mode {
		case ModeHTTP:
			err = s.callRevalidate(ctx)
		default:
			err = s.refresh(ctx)
		}
		if err != nil {
			s.log.Error().Err(err).Msg("scheduled refresh failed")
			return
		}
		s.log.Info().Msg("scheduled refresh completed")
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

func (s *Scheduler) callRevalidate(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.siteURL+"/api/v1/revalidate", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cronSecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("revalidate callback returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
