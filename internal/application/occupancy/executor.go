package occupancy

import (
	"context"
	"fmt"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/scheduler"
)

// RefreshExecutor runs scheduler refresh jobs against the occupancy service
type RefreshExecutor struct {
	service *Service
	now     func() time.Time
}

// NewRefreshExecutor creates a new RefreshExecutor; now defaults to time.Now
func NewRefreshExecutor(service *Service, now func() time.Time) *RefreshExecutor {
	if now == nil {
		now = time.Now
	}
	return &RefreshExecutor{service: service, now: now}
}

// Execute implements scheduler.JobExecutor
func (e *RefreshExecutor) Execute(ctx context.Context, job *scheduler.Job) error {
	switch job.Kind {
	case scheduler.JobKindRefreshApartment:
		_, err := e.service.Refresh(ctx, job.ApartmentID, e.now())
		return err
	case scheduler.JobKindRefreshView:
		return e.service.RefreshView(ctx)
	default:
		return fmt.Errorf("%w: %q", scheduler.ErrInvalidJobKind, job.Kind)
	}
}
