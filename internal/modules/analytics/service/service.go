package service

import (
	"context"

	"anoa.com/typingarena/internal/entity"
	"anoa.com/typingarena/internal/modules/analytics/dto"
	"anoa.com/typingarena/internal/modules/analytics/repository"
	userRepo "anoa.com/typingarena/internal/modules/user/repository"
	"anoa.com/typingarena/pkg/apperror"
	"anoa.com/typingarena/pkg/clock"
	"github.com/google/uuid"
)

type AnalyticsService interface {
	GetRecord(ctx context.Context, userID uuid.UUID) (*entity.AnalyticsRecord, error)
	SubmitResult(ctx context.Context, userID uuid.UUID, input dto.SubmitResultInput) (*entity.AnalyticsRecord, error)
	ResetRecord(ctx context.Context, userID uuid.UUID) (*entity.AnalyticsRecord, error)
	GetPublicSummary(ctx context.Context, username string) (*dto.PublicSummary, error)
}

type analyticsService struct {
	repo     repository.AnalyticsRepository
	userRepo userRepo.UserRepository
	clock    clock.Clock
}

func NewAnalyticsService(repo repository.AnalyticsRepository, userRepo userRepo.UserRepository, clk clock.Clock) AnalyticsService {
	return &analyticsService{
		repo:     repo,
		userRepo: userRepo,
		clock:    clk,
	}
}

func (s *analyticsService) GetRecord(ctx context.Context, userID uuid.UUID) (*entity.AnalyticsRecord, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// SubmitResult folds one finished test into the user's record: the daily
// history is merged by the ledger, the latest-test snapshot fields are
// replaced, and total_par goes up by one. The record must already exist —
// it is created at registration.
func (s *analyticsService) SubmitResult(ctx context.Context, userID uuid.UUID, input dto.SubmitResultInput) (*entity.AnalyticsRecord, error) {
	if err := validateSubmission(input); err != nil {
		return nil, err
	}

	record, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	merged := MergeSubmission(record.Progress, today, input.WPM, input.Accuracy)

	lastTaken := input.LastTestTaken
	if lastTaken == nil {
		now := s.clock.Now()
		lastTaken = &now
	}

	patch := repository.RecordPatch{
		WPM:           round2(input.WPM),
		Accuracy:      round2(input.Accuracy),
		TestTimings:   input.TestTimings,
		MaxStreak:     input.MaxStreak,
		LastTestTaken: lastTaken,
		Progress:      merged,
	}

	if err := s.repo.ApplySubmission(ctx, userID, patch); err != nil {
		return nil, err
	}

	record.WPM = patch.WPM
	record.Accuracy = patch.Accuracy
	record.TestTimings = patch.TestTimings
	record.MaxStreak = patch.MaxStreak
	record.LastTestTaken = lastTaken
	record.Progress = merged
	record.TotalPar++

	return record, nil
}

func (s *analyticsService) ResetRecord(ctx context.Context, userID uuid.UUID) (*entity.AnalyticsRecord, error) {
	if err := s.repo.Reset(ctx, userID); err != nil {
		return nil, err
	}
	return entity.NewAnalyticsRecord(userID), nil
}

func (s *analyticsService) GetPublicSummary(ctx context.Context, username string) (*dto.PublicSummary, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.PublicSummary{
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		WPM:       record.WPM,
		Accuracy:  record.Accuracy,
		TotalPar:  record.TotalPar,
	}, nil
}

// validateSubmission rejects malformed results before anything is read or
// written, so a bad submission leaves the record untouched.
func validateSubmission(input dto.SubmitResultInput) error {
	if input.WPM < 0 || input.TestTimings < 0 || input.MaxStreak < 0 {
		return apperror.ErrInvalidInput
	}
	if input.Accuracy < 0 || input.Accuracy > 100 {
		return apperror.ErrInvalidInput
	}
	return nil
}
