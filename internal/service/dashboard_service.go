package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

const recentComplaintsLimit = 5

type complaintLister interface {
	List(ctx context.Context) ([]models.Complaint, error)
}

type userTypeLister interface {
	ListByType(ctx context.Context, userType models.UserType) ([]models.User, error)
}

// DashboardService computes admin dashboard counters.
type DashboardService struct {
	complaints complaintLister
	users      userTypeLister
	cache      *CacheService
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(complaints complaintLister, users userTypeLister, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{complaints: complaints, users: users, cache: cache, cacheTTL: cacheTTL, logger: logger, now: time.Now}
}

// Stats returns the dashboard counters and whether they were served from cache.
func (s *DashboardService) Stats(ctx context.Context) (*dto.ComplaintStats, bool, error) {
	var cached dto.ComplaintStats
	if s.cache.Get(ctx, complaintStatsKey, &cached) {
		return &cached, true, nil
	}

	complaints, err := s.complaints.List(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaints")
	}
	ordinary, err := s.users.ListByType(ctx, models.UserTypeOrdinary)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}
	agents, err := s.users.ListByType(ctx, models.UserTypeAgent)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load agents")
	}

	stats := BuildComplaintStats(complaints, ordinary, agents, s.now())
	s.cache.Set(ctx, complaintStatsKey, stats, s.cacheTTL)
	return stats, false, nil
}

// BuildComplaintStats aggregates the dashboard counters. Recent complaints are the last five in
// store order, newest first.
func BuildComplaintStats(complaints []models.Complaint, ordinary, agents []models.User, now time.Time) *dto.ComplaintStats {
	stats := &dto.ComplaintStats{
		TotalComplaints: len(complaints),
		TotalUsers:      len(ordinary),
		TotalAgents:     len(agents),
		GeneratedAt:     now.UTC(),
	}
	for _, c := range complaints {
		switch c.Status {
		case models.StatusPending:
			stats.PendingComplaints++
		case models.StatusInProgress:
			stats.InProgressComplaints++
		case models.StatusCompleted:
			stats.CompletedComplaints++
		}
		if ClassifyPriority(c.Comment) == models.PriorityHigh {
			stats.CriticalComplaints++
		}
	}

	year, month, _ := now.Date()
	for _, u := range ordinary {
		if y, m, _ := u.CreatedAt.In(now.Location()).Date(); y == year && m == month {
			stats.NewUsersThisMonth++
		}
	}

	start := len(complaints) - recentComplaintsLimit
	if start < 0 {
		start = 0
	}
	recent := make([]models.Complaint, 0, len(complaints)-start)
	for i := len(complaints) - 1; i >= start; i-- {
		recent = append(recent, complaints[i])
	}
	stats.RecentComplaints = recent
	return stats
}
