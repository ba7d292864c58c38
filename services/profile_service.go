package services

import (
	"context"

	"github.com/Z5Jonathan-maker/Eden-2-sub001/models"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/repositories"
	"golang.org/x/sync/errgroup"
)

// UserProfile aggregates a user's cross-competition earnings.
type UserProfile struct {
	UserID  int                 `json:"user_id"`
	Points  *models.UserPoints  `json:"points"`
	Badges  []*models.UserBadge `json:"badges"`
	Results []*models.Result    `json:"results"`
}

// ProfileService is the per-user read side: results, badges, points and
// notification history.
type ProfileService struct {
	resultRepo       repositories.ResultRepository
	userBadgeRepo    repositories.UserBadgeRepository
	pointsRepo       repositories.UserPointsRepository
	notificationRepo repositories.NotificationRepository
}

func NewProfileService(
	resultRepo repositories.ResultRepository,
	userBadgeRepo repositories.UserBadgeRepository,
	pointsRepo repositories.UserPointsRepository,
	notificationRepo repositories.NotificationRepository,
) *ProfileService {
	return &ProfileService{
		resultRepo:       resultRepo,
		userBadgeRepo:    userBadgeRepo,
		pointsRepo:       pointsRepo,
		notificationRepo: notificationRepo,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID int) (*UserProfile, error) {
	profile := &UserProfile{UserID: userID}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		points, err := s.pointsRepo.GetByUser(gCtx, userID)
		if err != nil {
			return err
		}
		profile.Points = points
		return nil
	})
	g.Go(func() error {
		badges, err := s.userBadgeRepo.ListByUser(gCtx, userID)
		if err != nil {
			return err
		}
		profile.Badges = badges
		return nil
	})
	g.Go(func() error {
		results, err := s.resultRepo.ListByUser(gCtx, userID)
		if err != nil {
			return err
		}
		profile.Results = results
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) ListNotifications(ctx context.Context, userID int, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notificationRepo.ListByUser(ctx, userID, unreadOnly, limit)
}
