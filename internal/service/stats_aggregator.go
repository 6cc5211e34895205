package service

import (
	"context"
	"errors"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/repository"
	"narraprep_backend/internal/util"
	"narraprep_backend/pkg/logger"
	"narraprep_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// StatsAggregator keeps the denormalized answer statistics on user documents.
type StatsAggregator struct {
	UserRepo *repository.UserRepository
}

func NewStatsAggregator(userRepo *repository.UserRepository) *StatsAggregator {
	return &StatsAggregator{UserRepo: userRepo}
}

// Record applies every outcome to the user's statistics in one compare-and-swap write.
// A missing user is logged and skipped.
func (s *StatsAggregator) Record(ctx context.Context, userID string, outcomes []AnswerOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	ctx, span := tracing.Tracer.Start(ctx, "StatsAggregator.Record")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Int("answers", len(outcomes)),
	)

	_, err := s.UserRepo.ModifyStats(ctx, userID, func(u *model.User) {
		for _, o := range outcomes {
			ApplyAnswer(u, o.Category, o.Correct)
		}
	})
	if errors.Is(err, util.ErrUserNotFound) {
		logger.Log.Warn("Skipping statistics for unknown user", zap.String("user_id", userID))
		return nil
	}
	if err != nil {
		span.RecordError(err)
	}
	return err
}
