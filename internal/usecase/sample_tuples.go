package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/AnanyaAppan/video-clip-order-prediction/internal/dataset"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/entity"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/domain/port"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/infra/metrics"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/permutation"
	"github.com/AnanyaAppan/video-clip-order-prediction/internal/sampler"
)

type SampleTuplesUseCase struct {
	repo      port.SampleJobRepository
	storage   port.VideoStorage
	source    port.FrameSource
	archiver  port.TupleArchiver
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	transform port.Transform
	logger    *zap.Logger
	tempDir   string
	maxRetry  int

	rngSeq atomic.Int64
}

type SampleTuplesConfig struct {
	TempDir    string
	MaxRetries int
}

func NewSampleTuplesUseCase(
	repo port.SampleJobRepository,
	storage port.VideoStorage,
	source port.FrameSource,
	archiver port.TupleArchiver,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	transform port.Transform,
	logger *zap.Logger,
	cfg SampleTuplesConfig,
) *SampleTuplesUseCase {
	return &SampleTuplesUseCase{
		repo:      repo,
		storage:   storage,
		source:    source,
		archiver:  archiver,
		publisher: publisher,
		dlq:       dlq,
		notifier:  notifier,
		transform: transform,
		logger:    logger,
		tempDir:   cfg.TempDir,
		maxRetry:  cfg.MaxRetries,
	}
}

func (uc *SampleTuplesUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "SampleTuplesUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.SampleRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}
	if msg.Mode == "" {
		msg.Mode = entity.ModeTrain
	}

	cfg, err := entity.NewSampleConfig(msg.ClipLen, msg.Interval, msg.TupleLen)
	if err == nil && msg.TupleCount <= 0 {
		err = fmt.Errorf("tuple count must be positive, got %d", msg.TupleCount)
	}
	if err == nil && msg.Mode != entity.ModeTrain && msg.Mode != entity.ModeEval && msg.Mode != entity.ModeSpaced {
		err = fmt.Errorf("unknown sampling mode %q", msg.Mode)
	}
	if err != nil {
		// A bad config is a caller bug, never retryable.
		uc.logger.Error("invalid sampling request", zap.Error(err), zap.String("video_key", msg.VideoKey))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "invalid_config: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_key", msg.VideoKey),
		attribute.Int("job.tuple_len", msg.TupleLen),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("video_key", msg.VideoKey))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewSampleJob(msg.VideoKey, cfg, msg.Mode, uc.maxRetry)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.samplePipeline(ctx, job, msg, cfg, rawMsg, log); err != nil {
		return err
	}

	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.JobStageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *SampleTuplesUseCase) samplePipeline(
	ctx context.Context,
	job *entity.SampleJob,
	msg entity.SampleRequestMessage,
	cfg entity.SampleConfig,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.tempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download video from object storage
	dlStart := time.Now()
	ctx2, spanDl := tracer.Start(ctx, "download_video")
	videoPath := filepath.Join(workDir, "input.mp4")
	if err := uc.storage.DownloadVideo(ctx2, msg.VideoKey, videoPath); err != nil {
		spanDl.End()
		log.Error("failed to download video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "download_video: "+err.Error(), log)
	}
	spanDl.End()
	metrics.JobStageDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Decode every frame into memory
	decStart := time.Now()
	ctx3, spanDec := tracer.Start(ctx, "decode_frames")
	seq, err := uc.source.Load(ctx3, videoPath)
	if err != nil {
		spanDec.End()
		log.Error("frame decode failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "decode_frames: "+err.Error(), log)
	}
	spanDec.End()
	metrics.JobStageDuration.WithLabelValues("decode").Observe(time.Since(decStart).Seconds())
	metrics.FramesDecodedTotal.Add(float64(seq.Len()))

	// Draw tuples
	smpStart := time.Now()
	_, spanSmp := tracer.Start(ctx, "sample_tuples")
	samples, dropped, err := uc.drawTuples(seq, cfg, msg, log)
	spanSmp.End()
	if err != nil {
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "sample_tuples: "+err.Error(), log)
	}
	metrics.JobStageDuration.WithLabelValues("sample").Observe(time.Since(smpStart).Seconds())
	metrics.TuplesSampledTotal.Add(float64(len(samples)))

	archiveKey := ""
	if len(samples) > 0 {
		// Package tuples into a zip
		arcStart := time.Now()
		ctx4, spanArc := tracer.Start(ctx, "write_archive")
		archivePath := filepath.Join(workDir, "tuples.zip")
		if err := uc.archiver.WriteArchive(ctx4, samples, archivePath); err != nil {
			spanArc.End()
			log.Error("archive creation failed", zap.Error(err))
			return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "write_archive: "+err.Error(), log)
		}
		spanArc.End()
		metrics.JobStageDuration.WithLabelValues("archive").Observe(time.Since(arcStart).Seconds())

		// Upload archive
		upStart := time.Now()
		ctx5, spanUp := tracer.Start(ctx, "upload_archive")
		archiveKey = fmt.Sprintf("%s/tuples.zip", job.ID.String())
		archiveFile, err := os.Open(archivePath)
		if err != nil {
			spanUp.End()
			return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "open_archive: "+err.Error(), log)
		}
		archiveStat, _ := archiveFile.Stat()
		if err := uc.storage.UploadArchive(ctx5, archiveKey, archiveFile, archiveStat.Size()); err != nil {
			archiveFile.Close()
			spanUp.End()
			log.Error("archive upload failed", zap.Error(err))
			return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_archive: "+err.Error(), log)
		}
		archiveFile.Close()
		spanUp.End()
		metrics.JobStageDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())
	} else {
		// Every draw was dropped. Per the drop-and-continue policy the job
		// still completes; the counts tell the story.
		log.Warn("all sampling draws dropped",
			zap.Int("requested", msg.TupleCount),
			zap.Int("frames", seq.Len()),
			zap.Int("span_frames", cfg.SpanFrames()),
		)
	}

	job.MarkCompleted(archiveKey, len(samples), dropped, seq.Len())
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("sampling job completed",
		zap.Int("tuple_count", len(samples)),
		zap.Int("dropped_count", dropped),
		zap.Int("frame_count", seq.Len()),
		zap.String("archive_key", archiveKey),
	)

	return nil
}

// drawTuples runs the requested number of sampling draws against the decoded
// sequence. Draws that fail because the video is too short are dropped and
// counted, never fatal.
func (uc *SampleTuplesUseCase) drawTuples(
	seq *port.FrameSequence,
	cfg entity.SampleConfig,
	msg entity.SampleRequestMessage,
	log *zap.Logger,
) ([]*entity.TupleSample, int, error) {
	codec, err := permutation.NewCodec(cfg.TupleLen)
	if err != nil {
		return nil, 0, fmt.Errorf("build permutation codec: %w", err)
	}

	rng := uc.newRng()
	samples := make([]*entity.TupleSample, 0, msg.TupleCount)
	dropped := 0
	for i := 0; i < msg.TupleCount; i++ {
		var sample *entity.TupleSample
		var err error
		switch msg.Mode {
		case entity.ModeEval:
			var tup sampler.Tuple
			tup, err = sampler.SampleAt(seq.Len(), cfg, int64(i))
			if err == nil {
				sample, err = dataset.BuildSample(seq, tup, codec, uc.transform)
			}
		case entity.ModeSpaced:
			var windows []sampler.Window
			windows, err = sampler.SampleSpaced(seq.Len(), cfg.UnitLen(), cfg.TupleLen)
			if err == nil {
				sample, err = dataset.BuildSpaced(seq, windows, codec, uc.transform, rng)
			}
		default:
			var tup sampler.Tuple
			tup, err = sampler.Sample(seq.Len(), cfg, rng)
			if err == nil {
				sample, err = dataset.BuildSample(seq, tup, codec, uc.transform)
			}
		}

		if errors.Is(err, sampler.ErrInsufficientLength) {
			dropped++
			metrics.SamplesDroppedTotal.WithLabelValues(metrics.DropReasonTooShort).Inc()
			log.Debug("draw dropped", zap.Int("draw", i), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, dropped, err
		}
		samples = append(samples, sample)
	}
	return samples, dropped, nil
}

// newRng returns a random source private to one job. An atomic sequence mixed
// into the wall clock keeps parallel workers on distinct streams.
func (uc *SampleTuplesUseCase) newRng() *rand.Rand {
	seed := time.Now().UnixNano() ^ (uc.rngSeq.Add(1) << 32)
	return rand.New(rand.NewSource(seed))
}

func (uc *SampleTuplesUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.SampleJob,
	msg entity.SampleRequestMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *SampleTuplesUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.SampleJob,
	msg entity.SampleRequestMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), msg.VideoKey, errMsg)
	}

	return nil
}

func (uc *SampleTuplesUseCase) publishStatus(ctx context.Context, job *entity.SampleJob, log *zap.Logger) {
	statusMsg := entity.SampleStatusMessage{
		JobID:        job.ID,
		Status:       job.Status,
		VideoKey:     job.VideoKey,
		ArchiveKey:   job.ArchiveKey,
		FrameCount:   job.FrameCount,
		TupleCount:   job.TupleCount,
		DroppedCount: job.DroppedCount,
		ErrorMessage: job.ErrorMessage,
		Attempt:      job.Attempt,
		MaxAttempts:  job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
