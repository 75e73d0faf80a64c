package port

import (
	"context"

	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/entity"
	"github.com/google/uuid"
)

type SampleJobRepository interface {
	Create(ctx context.Context, job *entity.SampleJob) error
	Update(ctx context.Context, job *entity.SampleJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.SampleJob, error)
}
