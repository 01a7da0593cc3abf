// Package pipelinestatus implements Pipeline Status (spec §4.6): a cheap,
// lock-free snapshot of pipeline health. Every mutator is a relaxed atomic
// store or add; the reader takes a snapshot by reading each field
// independently — there is no cross-field coordination, matching the
// spec's requirement that each field is individually consistent but the
// snapshot as a whole is not a single atomic unit. Drop-rate and
// real-time-factor are derived at read time, not stored.
package pipelinestatus

import (
	"sync/atomic"
	"time"
)

// Status holds the pipeline's live counters. Zero value is ready to use.
// Safe for concurrent use by any number of goroutines.
type Status struct {
	audioLagMs          atomic.Int64
	lastInferenceTimeMs atomic.Int64
	inferenceWallMs     atomic.Int64
	droppedChunks       atomic.Uint64
	gapsDetected        atomic.Uint64
	chunksProcessed     atomic.Uint64
	audioProcessedMs    atomic.Int64
}

// Snapshot is a point-in-time, non-atomic read of every Status field plus
// the fields derived from them.
type Snapshot struct {
	AudioLagMs          int64
	LastInferenceTimeMs int64
	DroppedChunks       uint64
	GapsDetected        uint64
	ChunksProcessed     uint64
	AudioProcessedMs    int64

	// DropRate is DroppedChunks / (DroppedChunks + ChunksProcessed), the
	// fraction of chunks lost to backpressure. 0 when nothing has been
	// processed yet.
	DropRate float64

	// RealTimeFactor is cumulative inference wall-clock time divided by
	// cumulative audio duration processed. Below 1.0 means the pipeline is
	// running faster than real time. 0 when no audio has been processed yet.
	RealTimeFactor float64
}

// RecordLag stores the current audio pipeline delay in milliseconds.
func (s *Status) RecordLag(ms int64) {
	s.audioLagMs.Store(ms)
}

// RecordInference records one recognizer (or equivalent) inference call's
// wall-clock duration, updating both the latest-call gauge and the
// cumulative total used to derive RealTimeFactor.
func (s *Status) RecordInference(d time.Duration) {
	ms := d.Milliseconds()
	s.lastInferenceTimeMs.Store(ms)
	s.inferenceWallMs.Add(ms)
}

// IncrDroppedChunks increments the dropped-chunk counter by one. Monotonic
// non-decreasing for the lifetime of the Status, per spec §8 invariant 3.
func (s *Status) IncrDroppedChunks() {
	s.droppedChunks.Add(1)
}

// IncrGapsDetected increments the sequence-gap counter by one.
func (s *Status) IncrGapsDetected() {
	s.gapsDetected.Add(1)
}

// IncrChunksProcessed increments the successfully-processed chunk counter.
func (s *Status) IncrChunksProcessed() {
	s.chunksProcessed.Add(1)
}

// RecordAudioProcessed adds ms of audio duration to the cumulative total
// used to derive RealTimeFactor.
func (s *Status) RecordAudioProcessed(ms int64) {
	s.audioProcessedMs.Add(ms)
}

// Read takes a point-in-time snapshot, computing DropRate and
// RealTimeFactor from the individually-read counters.
func (s *Status) Read() Snapshot {
	dropped := s.droppedChunks.Load()
	processed := s.chunksProcessed.Load()
	audioMs := s.audioProcessedMs.Load()
	inferenceMs := s.inferenceWallMs.Load()

	snap := Snapshot{
		AudioLagMs:          s.audioLagMs.Load(),
		LastInferenceTimeMs: s.lastInferenceTimeMs.Load(),
		DroppedChunks:       dropped,
		GapsDetected:        s.gapsDetected.Load(),
		ChunksProcessed:     processed,
		AudioProcessedMs:    audioMs,
	}

	if total := dropped + processed; total > 0 {
		snap.DropRate = float64(dropped) / float64(total)
	}
	if audioMs > 0 {
		snap.RealTimeFactor = float64(inferenceMs) / float64(audioMs)
	}
	return snap
}
