package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// SampleJob tracks one tuple-sampling request over one video: which video,
// which sampling config, how many tuples were produced and how many draws
// were dropped (too short, decode failure), and where the resulting archive
// landed.
type SampleJob struct {
	ID           uuid.UUID
	VideoKey     string
	ArchiveKey   string
	Status       JobStatus
	ClipLen      int
	Interval     int
	TupleLen     int
	Mode         string
	FrameCount   int
	TupleCount   int
	DroppedCount int
	Attempt      int
	MaxAttempts  int
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

func NewSampleJob(videoKey string, cfg SampleConfig, mode string, maxAttempts int) *SampleJob {
	now := time.Now().UTC()
	return &SampleJob{
		ID:          uuid.New(),
		VideoKey:    videoKey,
		Status:      JobStatusPending,
		ClipLen:     cfg.ClipLen,
		Interval:    cfg.Interval,
		TupleLen:    cfg.TupleLen,
		Mode:        mode,
		Attempt:     0,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (j *SampleJob) MarkProcessing() {
	j.Status = JobStatusProcessing
	j.Attempt++
	j.UpdatedAt = time.Now().UTC()
}

func (j *SampleJob) MarkCompleted(archiveKey string, tuples, dropped, frames int) {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.ArchiveKey = archiveKey
	j.TupleCount = tuples
	j.DroppedCount = dropped
	j.FrameCount = frames
	j.UpdatedAt = now
	j.CompletedAt = &now
}

func (j *SampleJob) MarkFailed(errMsg string) {
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.UpdatedAt = time.Now().UTC()
}

func (j *SampleJob) CanRetry() bool {
	return j.Attempt < j.MaxAttempts
}
