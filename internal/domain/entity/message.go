package entity

import "github.com/google/uuid"

// Sampling modes accepted on a request.
const (
	ModeTrain  = "train"  // fresh randomness per draw
	ModeEval   = "eval"   // draw index seeds the sampler, fully reproducible
	ModeSpaced = "spaced" // evenly spaced unshuffled clips (retrieval layout)
)

// SampleRequestMessage is the inbound message from the sampling.request queue.
type SampleRequestMessage struct {
	JobID      uuid.UUID `json:"job_id"`
	VideoKey   string    `json:"video_key"`
	ClipLen    int       `json:"clip_len"`
	Interval   int       `json:"interval"`
	TupleLen   int       `json:"tuple_len"`
	TupleCount int       `json:"tuple_count"`
	Mode       string    `json:"mode"`
	UserEmail  string    `json:"user_email,omitempty"`
}

// SampleStatusMessage is the outbound message published to the sampling.status queue.
type SampleStatusMessage struct {
	JobID        uuid.UUID `json:"job_id"`
	Status       JobStatus `json:"status"`
	VideoKey     string    `json:"video_key"`
	ArchiveKey   string    `json:"archive_key,omitempty"`
	FrameCount   int       `json:"frame_count,omitempty"`
	TupleCount   int       `json:"tuple_count"`
	DroppedCount int       `json:"dropped_count"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Attempt      int       `json:"attempt"`
	MaxAttempts  int       `json:"max_attempts"`
}
