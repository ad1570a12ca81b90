package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"study-pulse/internal/analytics"
	"study-pulse/internal/cache"
	"study-pulse/internal/config"
	"study-pulse/internal/domain"
	"study-pulse/internal/dto"
	"study-pulse/internal/logger"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// historyFetchConcurrency bounds the per-title fan-out against the
	// backend so a large note library does not open one request per note
	// all at once.
	historyFetchConcurrency = 4

	defaultRecentPerPage = 10
	maxRecentPerPage     = 50
)

// AnalyticsService defines the interface for performance analytics
type AnalyticsService interface {
	GetAnalytics(ctx context.Context, course, window string, page, perPage int) (*dto.AnalyticsResponse, error)
	ListCourses(ctx context.Context, search string) (*dto.CourseListResponse, error)
	ListNotes(ctx context.Context) ([]dto.NoteResponse, error)
}

// analyticsService implements AnalyticsService
type analyticsService struct {
	notes   domain.NoteSource
	history domain.HistorySource
	cache   domain.Cache
	cfg     config.CacheConfig
}

// NewAnalyticsService creates a new instance of analyticsService
func NewAnalyticsService(notes domain.NoteSource, history domain.HistorySource, cacheAdapter domain.Cache, cfg config.CacheConfig) AnalyticsService {
	return &analyticsService{
		notes:   notes,
		history: history,
		cache:   cacheAdapter,
		cfg:     cfg,
	}
}

// GetAnalytics aggregates the stored attempt history into the dashboard
// view for one course/window selection, plus a page of recent attempts in
// newest-first order.
func (s *analyticsService) GetAnalytics(ctx context.Context, course, window string, page, perPage int) (*dto.AnalyticsResponse, error) {
	history, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	win := analytics.ParseWindow(window)
	view := analytics.Aggregate(history, analytics.Filter{Course: course, Window: win}, time.Now())

	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultRecentPerPage
	}
	if perPage > maxRecentPerPage {
		perPage = maxRecentPerPage
	}

	recent := lo.Reverse(append([]domain.AttemptRecord(nil), view.Records...))
	totalPages := 0
	if view.Count > 0 {
		totalPages = (view.Count + perPage - 1) / perPage
	}
	start := (page - 1) * perPage
	if start > len(recent) {
		start = len(recent)
	}
	end := start + perPage
	if end > len(recent) {
		end = len(recent)
	}

	return &dto.AnalyticsResponse{
		Course:           course,
		Window:           string(win),
		TotalQuizzes:     view.Count,
		AverageScore:     view.Average,
		HighestScore:     view.Max,
		ImprovementTrend: view.Trend,
		Histogram: lo.Map(view.Histogram, func(b analytics.Bucket, _ int) dto.BucketResponse {
			return dto.BucketResponse{Range: b.Range, Count: b.Count}
		}),
		Distribution: lo.Map(view.Distribution, func(b analytics.Band, _ int) dto.BandResponse {
			return dto.BandResponse{Name: b.Name, Count: b.Count}
		}),
		Recent: lo.Map(recent[start:end], func(r domain.AttemptRecord, _ int) dto.AttemptResponse {
			return dto.AttemptResponse{Title: r.Title, Score: r.Score, CreatedAt: r.CreatedAt}
		}),
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// ListCourses summarizes every course that has at least one attempt,
// optionally narrowed by a case-insensitive title search.
func (s *analyticsService) ListCourses(ctx context.Context, search string) (*dto.CourseListResponse, error) {
	history, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	grouped := lo.GroupBy(history, func(r domain.AttemptRecord) string { return r.Title })

	courses := make([]dto.CourseSummaryResponse, 0, len(grouped))
	needle := strings.ToLower(strings.TrimSpace(search))
	for title, records := range grouped {
		if needle != "" && !strings.Contains(strings.ToLower(title), needle) {
			continue
		}
		sum := 0
		for _, r := range records {
			sum += r.Score
		}
		// loadHistory returns records in ascending attempt time, so the last
		// record per group is the latest attempt.
		courses = append(courses, dto.CourseSummaryResponse{
			Title:        title,
			Attempts:     len(records),
			AverageScore: int(math.Round(float64(sum) / float64(len(records)))),
			LatestScore:  records[len(records)-1].Score,
		})
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Title < courses[j].Title })

	return &dto.CourseListResponse{Courses: courses}, nil
}

// ListNotes returns the stored note titles a quiz can be generated from.
func (s *analyticsService) ListNotes(ctx context.Context) ([]dto.NoteResponse, error) {
	notes, err := s.notes.FetchNotes(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(notes, func(n domain.Note, _ int) dto.NoteResponse {
		return dto.NoteResponse{Title: n.Title}
	}), nil
}

// loadHistory fans out one attempt-history fetch per distinct note title.
// A title whose fetch fails contributes nothing instead of failing the whole
// dashboard; only the initial note listing is fatal. The merged result is
// sorted ascending by attempt time.
func (s *analyticsService) loadHistory(ctx context.Context) ([]domain.AttemptRecord, error) {
	titles, err := s.noteTitles(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var merged []domain.AttemptRecord

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyFetchConcurrency)
	for _, title := range titles {
		g.Go(func() error {
			records, err := s.attemptsForTitle(gctx, title)
			if err != nil {
				logger.Get().Warn("Attempt history fetch failed",
					zap.String("title", title),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			merged = append(merged, records...)
			mu.Unlock()
			return nil
		})
	}
	// Goroutines swallow their errors, so Wait only synchronizes.
	_ = g.Wait()

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.Before(merged[j].CreatedAt)
	})
	return merged, nil
}

func (s *analyticsService) noteTitles(ctx context.Context) ([]string, error) {
	key := cache.GenerateCacheKey("analytics", "notes", "titles")
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var titles []string
		if err := json.Unmarshal([]byte(cached), &titles); err == nil {
			return titles, nil
		}
	} else if err != domain.ErrCacheMiss {
		logger.Get().Debug("Note title cache read failed", zap.Error(err))
	}

	notes, err := s.notes.FetchNotes(ctx)
	if err != nil {
		return nil, err
	}
	titles := lo.Uniq(lo.Map(notes, func(n domain.Note, _ int) string { return n.Title }))

	if payload, err := json.Marshal(titles); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.cfg.NotesTTL); err != nil {
			logger.Get().Debug("Note title cache write failed", zap.Error(err))
		}
	}
	return titles, nil
}

func (s *analyticsService) attemptsForTitle(ctx context.Context, title string) ([]domain.AttemptRecord, error) {
	key := cache.GenerateCacheKey("analytics", "attempts", title)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var records []domain.AttemptRecord
		if err := json.Unmarshal([]byte(cached), &records); err == nil {
			return records, nil
		}
	} else if err != domain.ErrCacheMiss {
		logger.Get().Debug("Attempt history cache read failed",
			zap.String("title", title),
			zap.Error(err))
	}

	records, err := s.history.FetchAttempts(ctx, title)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(records); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.cfg.HistoryTTL); err != nil {
			logger.Get().Debug("Attempt history cache write failed",
				zap.String("title", title),
				zap.Error(err))
		}
	}
	return records, nil
}
