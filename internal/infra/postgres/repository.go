package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/entity"
)

type SampleJobRepository struct {
	pool *pgxpool.Pool
}

func NewSampleJobRepository(pool *pgxpool.Pool) *SampleJobRepository {
	return &SampleJobRepository{pool: pool}
}

func (r *SampleJobRepository) Create(ctx context.Context, job *entity.SampleJob) error {
	query := `
		INSERT INTO sample_jobs (
			id, video_key, archive_key, status, clip_len, interval_len,
			tuple_len, mode, frame_count, tuple_count, dropped_count,
			attempt, max_attempts, error_message,
			created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	_, err := r.pool.Exec(ctx, query,
		job.ID, job.VideoKey, job.ArchiveKey, string(job.Status),
		job.ClipLen, job.Interval, job.TupleLen, job.Mode,
		job.FrameCount, job.TupleCount, job.DroppedCount,
		job.Attempt, job.MaxAttempts, job.ErrorMessage,
		job.CreatedAt, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sample job: %w", err)
	}
	return nil
}

func (r *SampleJobRepository) Update(ctx context.Context, job *entity.SampleJob) error {
	query := `
		UPDATE sample_jobs SET
			status=$2, archive_key=$3, frame_count=$4, tuple_count=$5,
			dropped_count=$6, attempt=$7, error_message=$8,
			updated_at=$9, completed_at=$10
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query,
		job.ID, string(job.Status), job.ArchiveKey, job.FrameCount,
		job.TupleCount, job.DroppedCount, job.Attempt, job.ErrorMessage,
		job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update sample job: %w", err)
	}
	return nil
}

func (r *SampleJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.SampleJob, error) {
	query := `
		SELECT id, video_key, archive_key, status, clip_len, interval_len,
			tuple_len, mode, frame_count, tuple_count, dropped_count,
			attempt, max_attempts, error_message,
			created_at, updated_at, completed_at
		FROM sample_jobs WHERE id=$1`

	job := &entity.SampleJob{}
	var status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.VideoKey, &job.ArchiveKey, &status,
		&job.ClipLen, &job.Interval, &job.TupleLen, &job.Mode,
		&job.FrameCount, &job.TupleCount, &job.DroppedCount,
		&job.Attempt, &job.MaxAttempts, &job.ErrorMessage,
		&job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find sample job by id: %w", err)
	}
	job.Status = entity.JobStatus(status)
	return job, nil
}
