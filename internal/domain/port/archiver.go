package port

import (
	"context"

	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/entity"
)

// TupleArchiver packages sampled tuples into a single file for upload.
type TupleArchiver interface {
	WriteArchive(ctx context.Context, samples []*entity.TupleSample, outputPath string) error
}
