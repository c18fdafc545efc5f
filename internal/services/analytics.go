package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/repos"
)

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type QualityPoint struct {
	Date     string  `json:"date"`
	AvgScore float64 `json:"avg_score"`
}

type ProjectAnalytics struct {
	TotalOptimizations    int             `json:"total_optimizations"`
	TotalRefinements      int             `json:"total_refinements"`
	AvgQualityScore       int             `json:"avg_quality_score"`
	TopFeedbackCategories []CategoryCount `json:"top_feedback_categories"`
	QualityTrend          []QualityPoint  `json:"quality_trend"`
}

// AnalyticsService is a pure read over a project's optimizations; the same
// data always produces the same report.
type AnalyticsService interface {
	ForProject(ctx context.Context, actor, projectID uuid.UUID) (*ProjectAnalytics, error)
}

type analyticsService struct {
	log     *logger.Logger
	guard   Guard
	optRepo repos.OptimizationRepo
}

func NewAnalyticsService(log *logger.Logger, guard Guard, optRepo repos.OptimizationRepo) AnalyticsService {
	return &analyticsService{
		log:     log.With("service", "AnalyticsService"),
		guard:   guard,
		optRepo: optRepo,
	}
}

func (as *analyticsService) ForProject(ctx context.Context, actor, projectID uuid.UUID) (*ProjectAnalytics, error) {
	if err := as.guard.AuthorizeProject(ctx, actor, projectID); err != nil {
		return nil, err
	}
	opts, err := as.optRepo.ListByProject(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}

	report := &ProjectAnalytics{
		TotalOptimizations:    len(opts),
		TopFeedbackCategories: []CategoryCount{},
		QualityTrend:          []QualityPoint{},
	}

	// Null scores are excluded from both numerator and denominator.
	scoreSum := 0
	scoreCount := 0
	categories := map[string]int{}
	type dayAgg struct {
		sum   int
		count int
	}
	days := map[string]*dayAgg{}

	for _, opt := range opts {
		report.TotalRefinements += len(opt.Refinements)
		for _, ref := range opt.Refinements {
			categories[ref.Category]++
		}
		if opt.QualityScore == nil {
			continue
		}
		scoreSum += *opt.QualityScore
		scoreCount++
		day := opt.CreatedAt.UTC().Format(time.DateOnly)
		agg, ok := days[day]
		if !ok {
			agg = &dayAgg{}
			days[day] = agg
		}
		agg.sum += *opt.QualityScore
		agg.count++
	}

	if scoreCount > 0 {
		report.AvgQualityScore = int(math.Round(float64(scoreSum) / float64(scoreCount)))
	}

	for category, count := range categories {
		report.TopFeedbackCategories = append(report.TopFeedbackCategories, CategoryCount{
			Category: category,
			Count:    count,
		})
	}
	sort.Slice(report.TopFeedbackCategories, func(i, j int) bool {
		a, b := report.TopFeedbackCategories[i], report.TopFeedbackCategories[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})

	for day, agg := range days {
		report.QualityTrend = append(report.QualityTrend, QualityPoint{
			Date:     day,
			AvgScore: float64(agg.sum) / float64(agg.count),
		})
	}
	sort.Slice(report.QualityTrend, func(i, j int) bool {
		return report.QualityTrend[i].Date < report.QualityTrend[j].Date
	})

	return report, nil
}
