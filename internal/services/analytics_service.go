package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crypticandwired/StudentFeedback/internal/cache"
	"github.com/crypticandwired/StudentFeedback/internal/repositories"
)

const (
	dashboardCacheKey = "dashboard"
	analyticsCacheKey = "analytics"

	recentFeedbackLimit = 5
	topCoursesLimit     = 10
	engagementLimit     = 10
	trendMonths         = 12
)

// ===== RESPONSE DTOs =====

type DashboardResponse struct {
	Overview           DashboardOverview  `json:"overview"`
	RatingDistribution []RatingBucket     `json:"ratingDistribution"`
	RecentFeedback     []FeedbackResponse `json:"recentFeedback"`
	TopCourses         []CoursePerformance `json:"topCourses"`
}

type DashboardOverview struct {
	TotalStudents   int64    `json:"totalStudents"`
	BlockedStudents int64    `json:"blockedStudents"`
	TotalCourses    int64    `json:"totalCourses"`
	TotalFeedback   int64    `json:"totalFeedback"`
	AverageRating   *float64 `json:"averageRating"`
}

type CoursePerformance struct {
	CourseID           uint           `json:"courseId"`
	Name               string         `json:"name"`
	Code               string         `json:"code"`
	Instructor         string         `json:"instructor"`
	TotalFeedback      int64          `json:"totalFeedback"`
	AverageRating      float64        `json:"averageRating"`
	RatingDistribution []RatingBucket `json:"ratingDistribution,omitempty"`
}

type AnalyticsResponse struct {
	MonthlyTrends         []MonthlyTrend          `json:"monthlyTrends"`
	RatingTrends          []RatingTrend           `json:"ratingTrends"`
	CoursePerformance     []CoursePerformance     `json:"coursePerformance"`
	StudentEngagement     []StudentEngagementItem `json:"studentEngagement"`
	InstructorPerformance []InstructorStats       `json:"instructorPerformance"`
}

// MonthlyTrend covers one calendar month that actually has feedback.
// Months without submissions are omitted rather than zero-filled.
type MonthlyTrend struct {
	Year            int            `json:"year"`
	Month           int            `json:"month"`
	Count           int64          `json:"count"`
	AverageRating   float64        `json:"averageRating"`
	RatingBreakdown []RatingBucket `json:"ratingBreakdown"`
}

// RatingTrend is the per-month rating histogram, months with no
// submissions omitted like MonthlyTrend.
type RatingTrend struct {
	Year    int            `json:"year"`
	Month   int            `json:"month"`
	Ratings []RatingBucket `json:"ratings"`
}

type StudentEngagementItem struct {
	StudentID     uint      `json:"studentId"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	FeedbackCount int64     `json:"feedbackCount"`
	AverageRating float64   `json:"averageRating"`
	LastFeedback  time.Time `json:"lastFeedback"`
}

type InstructorStats struct {
	Instructor    string             `json:"instructor"`
	TotalFeedback int64              `json:"totalFeedback"`
	AverageRating float64            `json:"averageRating"`
	Courses       []InstructorCourse `json:"courses"`
}

type InstructorCourse struct {
	CourseName    string  `json:"courseName"`
	FeedbackCount int64   `json:"feedbackCount"`
	AverageRating float64 `json:"averageRating"`
}

// ===== SERVICE IMPLEMENTATION =====

type analyticsService struct {
	repo     repositories.Repository
	logger   *slog.Logger
	cache    *cache.CacheManager
	cacheTTL time.Duration
}

func NewAnalyticsService(repo repositories.Repository, logger *slog.Logger, cm *cache.CacheManager, cacheTTL time.Duration) AnalyticsService {
	return &analyticsService{
		repo:     repo,
		logger:   logger,
		cache:    cm,
		cacheTTL: cacheTTL,
	}
}

func (s *analyticsService) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	var resp DashboardResponse

	err := s.cache.Stats.CacheOrExecute(ctx, dashboardCacheKey, &resp, s.cacheTTL, func() (interface{}, error) {
		return s.buildDashboard(ctx)
	})
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// buildDashboard fans the independent aggregate queries out and fails
// the whole response if any of them fails.
func (s *analyticsService) buildDashboard(ctx context.Context) (*DashboardResponse, error) {
	var (
		totalStudents   int64
		blockedStudents int64
		totalCourses    int64
		ratingStats     repositories.RatingStats
		distribution    []repositories.RatingCount
		recent          []FeedbackResponse
		topCourses      []CoursePerformance
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		totalStudents, err = s.repo.Analytics().CountStudents(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		blockedStudents, err = s.repo.Analytics().CountBlockedStudents(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		totalCourses, err = s.repo.Analytics().CountCourses(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		ratingStats, err = s.repo.Analytics().GlobalRatingStats(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		distribution, err = s.repo.Analytics().RatingDistribution(gctx, nil)
		return err
	})
	g.Go(func() error {
		feedback, err := s.repo.Analytics().RecentFeedback(gctx, nil, recentFeedbackLimit)
		if err != nil {
			return err
		}
		recent = make([]FeedbackResponse, 0, len(feedback))
		for i := range feedback {
			recent = append(recent, toFeedbackResponse(&feedback[i], true))
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.Analytics().TopCourseRatings(gctx, nil, topCoursesLimit)
		if err != nil {
			return err
		}
		topCourses = make([]CoursePerformance, 0, len(rows))
		for _, row := range rows {
			topCourses = append(topCourses, CoursePerformance{
				CourseID:      row.CourseID,
				Name:          row.Name,
				Code:          row.Code,
				Instructor:    row.Instructor,
				TotalFeedback: row.Count,
				AverageRating: averageRating(row.Sum, row.Count),
			})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	overview := DashboardOverview{
		TotalStudents:   totalStudents,
		BlockedStudents: blockedStudents,
		TotalCourses:    totalCourses,
		TotalFeedback:   ratingStats.Count,
	}
	if ratingStats.Count > 0 {
		avg := averageRating(ratingStats.Sum, ratingStats.Count)
		overview.AverageRating = &avg
	}

	return &DashboardResponse{
		Overview:           overview,
		RatingDistribution: zeroFilledDistribution(distribution),
		RecentFeedback:     recent,
		TopCourses:         topCourses,
	}, nil
}

func (s *analyticsService) Analytics(ctx context.Context) (*AnalyticsResponse, error) {
	var resp AnalyticsResponse

	err := s.cache.Stats.CacheOrExecute(ctx, analyticsCacheKey, &resp, s.cacheTTL, func() (interface{}, error) {
		return s.buildAnalytics(ctx)
	})
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

func (s *analyticsService) buildAnalytics(ctx context.Context) (*AnalyticsResponse, error) {
	// Rolling window: current month plus the eleven before it.
	now := time.Now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(trendMonths - 1), 0)

	var (
		monthBuckets     []repositories.MonthBucket
		monthRatings     []repositories.MonthRatingBucket
		courseStats      []repositories.CourseRatingRow
		courseRatings    []repositories.CourseRatingCount
		engagement       []repositories.StudentEngagementRow
		instructorCourse []repositories.InstructorCourseRow
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		monthBuckets, err = s.repo.Analytics().MonthlyBuckets(gctx, nil, since)
		return err
	})
	g.Go(func() error {
		var err error
		monthRatings, err = s.repo.Analytics().MonthlyRatingBuckets(gctx, nil, since)
		return err
	})
	g.Go(func() error {
		var err error
		courseStats, err = s.repo.Analytics().CourseRatingStats(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		courseRatings, err = s.repo.Analytics().CourseRatingDistribution(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		engagement, err = s.repo.Analytics().StudentEngagement(gctx, nil, engagementLimit)
		return err
	})
	g.Go(func() error {
		var err error
		instructorCourse, err = s.repo.Analytics().InstructorCourseStats(gctx, nil)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build analytics: %w", err)
	}

	return &AnalyticsResponse{
		MonthlyTrends:         buildMonthlyTrends(monthBuckets, monthRatings),
		RatingTrends:          buildRatingTrends(monthRatings),
		CoursePerformance:     buildCoursePerformance(courseStats, courseRatings),
		StudentEngagement:     buildStudentEngagement(engagement),
		InstructorPerformance: buildInstructorStats(instructorCourse),
	}, nil
}

// ===== AGGREGATION HELPERS =====

// averageRating is always sum/count over raw ratings, never an average
// of per-group averages.
func averageRating(sum, count int64) float64 {
	if count == 0 {
		return 0
	}
	return roundFloat(float64(sum)/float64(count), 2)
}

// zeroFilledDistribution expands sparse rating counts into all five
// buckets so clients can render the chart without gap handling.
func zeroFilledDistribution(rows []repositories.RatingCount) []RatingBucket {
	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Count
	}

	buckets := make([]RatingBucket, 0, 5)
	for rating := 1; rating <= 5; rating++ {
		buckets = append(buckets, RatingBucket{Rating: rating, Count: counts[rating]})
	}

	return buckets
}

func buildMonthlyTrends(buckets []repositories.MonthBucket, ratings []repositories.MonthRatingBucket) []MonthlyTrend {
	type monthKey struct{ year, month int }

	breakdowns := make(map[monthKey][]repositories.RatingCount)
	for _, r := range ratings {
		key := monthKey{r.Year, r.Month}
		breakdowns[key] = append(breakdowns[key], repositories.RatingCount{Rating: r.Rating, Count: r.Count})
	}

	trends := make([]MonthlyTrend, 0, len(buckets))
	for _, b := range buckets {
		trends = append(trends, MonthlyTrend{
			Year:            b.Year,
			Month:           b.Month,
			Count:           b.Count,
			AverageRating:   averageRating(b.Sum, b.Count),
			RatingBreakdown: zeroFilledDistribution(breakdowns[monthKey{b.Year, b.Month}]),
		})
	}

	// Repository already orders chronologically, kept as a guarantee.
	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Year != trends[j].Year {
			return trends[i].Year < trends[j].Year
		}
		return trends[i].Month < trends[j].Month
	})

	return trends
}

func buildCoursePerformance(stats []repositories.CourseRatingRow, ratings []repositories.CourseRatingCount) []CoursePerformance {
	distributions := make(map[uint][]repositories.RatingCount)
	for _, r := range ratings {
		distributions[r.CourseID] = append(distributions[r.CourseID], repositories.RatingCount{Rating: r.Rating, Count: r.Count})
	}

	performance := make([]CoursePerformance, 0, len(stats))
	for _, row := range stats {
		performance = append(performance, CoursePerformance{
			CourseID:           row.CourseID,
			Name:               row.Name,
			Code:               row.Code,
			Instructor:         row.Instructor,
			TotalFeedback:      row.Count,
			AverageRating:      averageRating(row.Sum, row.Count),
			RatingDistribution: zeroFilledDistribution(distributions[row.CourseID]),
		})
	}

	sort.Slice(performance, func(i, j int) bool {
		if performance[i].AverageRating != performance[j].AverageRating {
			return performance[i].AverageRating > performance[j].AverageRating
		}
		return performance[i].Name < performance[j].Name
	})

	return performance
}

// buildRatingTrends reshapes the per-(month, rating) counts into one
// zero-filled histogram per month, chronologically.
func buildRatingTrends(ratings []repositories.MonthRatingBucket) []RatingTrend {
	type monthKey struct{ year, month int }

	counts := make(map[monthKey][]repositories.RatingCount)
	order := make([]monthKey, 0)
	for _, r := range ratings {
		key := monthKey{r.Year, r.Month}
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key] = append(counts[key], repositories.RatingCount{Rating: r.Rating, Count: r.Count})
	}

	trends := make([]RatingTrend, 0, len(order))
	for _, key := range order {
		trends = append(trends, RatingTrend{
			Year:    key.year,
			Month:   key.month,
			Ratings: zeroFilledDistribution(counts[key]),
		})
	}

	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Year != trends[j].Year {
			return trends[i].Year < trends[j].Year
		}
		return trends[i].Month < trends[j].Month
	})

	return trends
}

func buildStudentEngagement(rows []repositories.StudentEngagementRow) []StudentEngagementItem {
	items := make([]StudentEngagementItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, StudentEngagementItem{
			StudentID:     row.StudentID,
			Name:          row.Name,
			Email:         row.Email,
			FeedbackCount: row.Count,
			AverageRating: averageRating(row.Sum, row.Count),
			LastFeedback:  row.LastFeedback,
		})
	}

	return items
}

func buildInstructorStats(rows []repositories.InstructorCourseRow) []InstructorStats {
	type instructorAgg struct {
		sum     int64
		count   int64
		courses []InstructorCourse
	}

	aggs := make(map[string]*instructorAgg)
	order := make([]string, 0)
	for _, row := range rows {
		agg, ok := aggs[row.Instructor]
		if !ok {
			agg = &instructorAgg{}
			aggs[row.Instructor] = agg
			order = append(order, row.Instructor)
		}
		agg.sum += row.Sum
		agg.count += row.Count
		agg.courses = append(agg.courses, InstructorCourse{
			CourseName:    row.CourseName,
			FeedbackCount: row.Count,
			AverageRating: averageRating(row.Sum, row.Count),
		})
	}

	stats := make([]InstructorStats, 0, len(order))
	for _, name := range order {
		agg := aggs[name]
		stats = append(stats, InstructorStats{
			Instructor:    name,
			TotalFeedback: agg.count,
			AverageRating: averageRating(agg.sum, agg.count),
			Courses:       agg.courses,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].AverageRating != stats[j].AverageRating {
			return stats[i].AverageRating > stats[j].AverageRating
		}
		return stats[i].Instructor < stats[j].Instructor
	})

	return stats
}

func roundFloat(val float64, precision int) float64 {
	ratio := 1.0
	for i := 0; i < precision; i++ {
		ratio *= 10
	}
	return float64(int(val*ratio+0.5)) / ratio
}
