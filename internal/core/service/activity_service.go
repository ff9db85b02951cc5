package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bwils5/cloudbooks-manager/internal/core/domain"
	"github.com/bwils5/cloudbooks-manager/internal/core/ports"
)

// ActivityService appends and lists audit-trail records. Record is called
// only after the primary effect of an operation durably succeeded; a
// recording failure is reported to the caller but must never fail or roll
// back that operation.
type ActivityService struct {
	repo ports.ActivityRepository
	log  zerolog.Logger
}

func NewActivityService(repo ports.ActivityRepository, log zerolog.Logger) *ActivityService {
	return &ActivityService{repo: repo, log: log}
}

func (s *ActivityService) Record(ctx context.Context, action, detail string) error {
	rec := &domain.ActivityRecord{
		Action:    action,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("failed to persist activity record")
		return err
	}
	return nil
}

func (s *ActivityService) List(ctx context.Context) ([]*domain.ActivityRecord, error) {
	return s.repo.List(ctx)
}
