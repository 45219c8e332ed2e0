// Package cafeteria composes the scraper and the meal store into the
// ingestion pipeline: cache-or-fetch per-date lookups, targeted
// refreshes and bulk refreshes with per-posting failure isolation.
package cafeteria

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"babnet-backend/lib/meal"
	"babnet-backend/lib/mealstore"
	"babnet-backend/lib/scrapers/dimigo"
	"babnet-backend/lib/timezone"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/cafeteria")

// MenuSource is the scraping side of the pipeline. *dimigo.Client
// implements it; tests substitute fakes.
type MenuSource interface {
	FetchMenuPosts(ctx context.Context) ([]dimigo.MenuPost, error)
	FetchPosting(ctx context.Context, documentId string) (meal.CafeteriaData, error)
}

type Service struct {
	store  mealstore.Store
	source MenuSource
	now    func() time.Time
	cache  *expirable.LRU[string, meal.CafeteriaData]
}

// NewService wires the orchestrator. `now` may be nil, in which case
// the Seoul wall clock is used; tests inject a fixed clock instead.
func NewService(store mealstore.Store, source MenuSource, now func() time.Time) Service {
	if now == nil {
		now = timezone.Now
	}
	return Service{
		store:  store,
		source: source,
		now:    now,
		// repeat lookups of the same date skip the store for a while
		cache: expirable.NewLRU[string, meal.CafeteriaData](256, nil, time.Minute*5),
	}
}

// GetCafeteriaData answers "what was served on this date". a cached or
// stored document wins; otherwise the stored date range decides
// between ErrNoInformation (outside coverage) and ErrNoOperation
// (inside coverage but nothing published). both boundaries are
// inclusive.
func (s Service) GetCafeteriaData(ctx context.Context, dateKey string) (meal.CafeteriaData, error) {
	ctx, span := tracer.Start(ctx, "GetCafeteriaData")
	defer span.End()

	if cached, hit := s.cache.Get(dateKey); hit {
		return cached, nil
	}

	stored, err := s.store.GetMealData(ctx, dateKey)
	if err != nil {
		return meal.CafeteriaData{}, err
	}
	if stored != nil {
		s.cache.Add(dateKey, *stored)
		return *stored, nil
	}

	dates, err := s.store.GetDateRange(ctx)
	if err != nil {
		return meal.CafeteriaData{}, err
	}
	if dates.Earliest == "" || dates.Latest == "" {
		return meal.CafeteriaData{}, ErrNoInformation
	}
	if dateKey < dates.Earliest || dateKey > dates.Latest {
		return meal.CafeteriaData{}, ErrNoInformation
	}
	return meal.CafeteriaData{}, ErrNoOperation
}

// getMealData fetches and parses one posting, applies the stale-scrape
// guard and persists the result. an all-empty parse never overwrites
// an existing non-trivial document.
func (s Service) getMealData(ctx context.Context, documentId, dateKey string) (meal.CafeteriaData, error) {
	ctx, span := tracer.Start(ctx, "getMealData")
	defer span.End()

	data, err := s.source.FetchPosting(ctx, documentId)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch posting")
		return meal.CafeteriaData{}, fmt.Errorf("get meal data for %s: %w", dateKey, err)
	}

	if data.Empty() {
		existing, err := s.store.GetMealData(ctx, dateKey)
		if err != nil {
			return meal.CafeteriaData{}, err
		}
		if existing != nil {
			slog.InfoContext(ctx, "all meals empty, preserving existing data", "date", dateKey)
			return *existing, nil
		}
	}

	err = s.store.SaveMealData(ctx, dateKey, data, documentId)
	if err != nil {
		return meal.CafeteriaData{}, err
	}
	s.cache.Add(dateKey, data)

	return data, nil
}

// FetchAndSave resolves a target date against a freshly scanned post
// list: parse-and-store on a hit, otherwise the same two-tier
// no-information / no-operation decision as GetCafeteriaData, judged
// against the scanned posts instead of the store.
func (s Service) FetchAndSave(ctx context.Context, dateKey string, posts []dimigo.MenuPost) (meal.CafeteriaData, error) {
	ctx, span := tracer.Start(ctx, "FetchAndSave")
	defer span.End()

	for _, post := range posts {
		if post.Date == dateKey {
			return s.getMealData(ctx, post.DocumentId, dateKey)
		}
	}

	if len(posts) == 0 {
		return meal.CafeteriaData{}, ErrNoInformation
	}

	earliest, latest := posts[0].Date, posts[0].Date
	for _, post := range posts[1:] {
		if post.Date < earliest {
			earliest = post.Date
		}
		if post.Date > latest {
			latest = post.Date
		}
	}
	if dateKey < earliest || dateKey > latest {
		return meal.CafeteriaData{}, ErrNoInformation
	}
	return meal.CafeteriaData{}, ErrNoOperation
}

// RefreshSpecificDate re-parses one already-known date using its
// stored posting id, skipping a full listing re-scan.
func (s Service) RefreshSpecificDate(ctx context.Context, dateKey string) (meal.CafeteriaData, error) {
	ctx, span := tracer.Start(ctx, "RefreshSpecificDate")
	defer span.End()

	documentId, err := s.store.GetDocumentId(ctx, dateKey)
	if err != nil {
		return meal.CafeteriaData{}, err
	}
	if documentId == "" {
		return meal.CafeteriaData{}, ErrNoInformation
	}
	return s.getMealData(ctx, documentId, dateKey)
}

type RefreshType string

const (
	RefreshToday RefreshType = "today"
	RefreshAll   RefreshType = "all"
)

type RefreshReport struct {
	Success int
	Errors  int
}

// Refresh re-scans the listing and processes every discovered posting
// in scan order. a single posting's failure is logged and counted but
// never aborts the siblings; a failure of the listing scan itself is
// fatal.
func (s Service) Refresh(ctx context.Context, refreshType RefreshType) (RefreshReport, error) {
	ctx, span := tracer.Start(ctx, "Refresh")
	defer span.End()

	slog.InfoContext(ctx, "starting cafeteria refresh", "type", refreshType)

	posts, err := s.source.FetchMenuPosts(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "listing scan failed")
		return RefreshReport{}, fmt.Errorf("refresh: %w", err)
	}

	today := timezone.FormatDate(s.now())
	var report RefreshReport

	for _, post := range posts {
		if refreshType == RefreshToday && post.Date != today {
			continue
		}

		_, err := s.FetchAndSave(ctx, post.Date, posts)
		if err != nil {
			report.Errors++
			slog.ErrorContext(ctx, "failed to refresh posting", "title", post.Title, "date", post.Date, "err", err)
			continue
		}
		report.Success++
	}

	slog.InfoContext(
		ctx, "cafeteria refresh completed",
		"type", refreshType,
		"success", report.Success,
		"errors", report.Errors,
	)
	return report, nil
}
