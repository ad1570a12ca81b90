package dto

import "time"

// AttemptResponse is one stored quiz attempt.
type AttemptResponse struct {
	Title     string    `json:"title"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// BucketResponse is one occupied 10-point histogram bucket.
type BucketResponse struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// BandResponse is one occupied qualitative performance band.
type BandResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AnalyticsResponse is the aggregated performance view for one
// course/window selection plus a page of recent attempts.
type AnalyticsResponse struct {
	Course           string            `json:"course,omitempty"`
	Window           string            `json:"window"`
	TotalQuizzes     int               `json:"total_quizzes"`
	AverageScore     int               `json:"average_score"`
	HighestScore     int               `json:"highest_score"`
	ImprovementTrend int               `json:"improvement_trend"`
	Histogram        []BucketResponse  `json:"histogram"`
	Distribution     []BandResponse    `json:"distribution"`
	Recent           []AttemptResponse `json:"recent"`
	Page             int               `json:"page"`
	PerPage          int               `json:"per_page"`
	TotalPages       int               `json:"total_pages"`
}

// CourseSummaryResponse is one course card on the analytics screen.
type CourseSummaryResponse struct {
	Title        string `json:"title"`
	Attempts     int    `json:"attempts"`
	AverageScore int    `json:"average_score"`
	LatestScore  int    `json:"latest_score"`
}

// CourseListResponse lists courses that have at least one attempt.
type CourseListResponse struct {
	Courses []CourseSummaryResponse `json:"courses"`
}
