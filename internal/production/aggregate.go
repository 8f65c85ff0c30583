package production

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"solisview/internal/logger"
	"solisview/internal/solis"
	"solisview/internal/store"
)

// StationAPI is the slice of the Solis client the aggregation needs.
type StationAPI interface {
	UserStationList(ctx context.Context) ([]solis.Station, error)
	StationMonth(ctx context.Context, stationID, month string) ([]solis.DailyEnergyRecord, error)
}

// MonthlyProduction is the aggregated result the page consumes. DailyTotals
// has one entry per calendar day of the month (index 0 = day 1), each rounded
// to one decimal. MonthlyTotal is the rounded sum of the totals before their
// own rounding.
type MonthlyProduction struct {
	DailyTotals  []float64 `json:"dailyTotals"`
	MonthlyTotal float64   `json:"monthlyTotal"`
	MonthName    string    `json:"monthName"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

// Cache is the result cache type shared between the service and its callers.
type Cache = store.ResultCache[*MonthlyProduction]

// Service computes and caches the current month's production across all
// stations on the account.
type Service struct {
	api   StationAPI
	cache *Cache
	log   zerolog.Logger
	now   func() time.Time
}

func NewService(api StationAPI, cache *Cache) *Service {
	return &Service{
		api:   api,
		cache: cache,
		log:   logger.New("production"),
		now:   time.Now,
	}
}

// FetchMonthlyProduction aggregates per-day energy across all stations for
// the current month. A failing station is logged and skipped so the rest of
// the fleet still contributes; a failing station list fails the whole call.
func (s *Service) FetchMonthlyProduction(ctx context.Context) (*MonthlyProduction, error) {
	now := s.now()
	year, month := now.Year(), now.Month()
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	monthKey := fmt.Sprintf("%04d-%02d", year, int(month))

	stations, err := s.api.UserStationList(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch station list: %w", err)
	}

	totals := make([]float64, daysInMonth)
	for _, st := range stations {
		records, err := s.api.StationMonth(ctx, st.ID, monthKey)
		if err != nil {
			s.log.Error().Err(err).Str("station", st.ID).Msg("station month fetch failed; skipping station")
			continue
		}
		for i := 0; i < daysInMonth && i < len(records); i++ {
			totals[i] += records[i].Energy
		}
	}

	var sum float64
	for _, v := range totals {
		sum += v
	}

	// The monthly total rounds the raw sum; only then are the per-day
	// values themselves rounded.
	result := &MonthlyProduction{
		DailyTotals:  totals,
		MonthlyTotal: round1(sum),
		MonthName:    month.String(),
		GeneratedAt:  now.UTC(),
	}
	for i := range totals {
		totals[i] = round1(totals[i])
	}

	return result, nil
}

// Current serves the cached result while fresh, recomputing otherwise. When
// a recompute fails and a stale result exists, the stale result is served.
func (s *Service) Current(ctx context.Context) (*MonthlyProduction, error) {
	if v, ok := s.cache.Get(); ok {
		return v, nil
	}

	result, err := s.Refresh(ctx)
	if err != nil {
		if v, ok := s.cache.Latest(); ok {
			s.log.Warn().Err(err).Msg("refresh failed; serving stale result")
			return v, nil
		}
		return nil, err
	}
	return result, nil
}

// Refresh recomputes the aggregation and replaces the cached result.
func (s *Service) Refresh(ctx context.Context) (*MonthlyProduction, error) {
	result, err := s.FetchMonthlyProduction(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Put(result)
	return result, nil
}

// Invalidate drops the cached result so the next read recomputes.
func (s *Service) Invalidate() {
	s.cache.Invalidate()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
