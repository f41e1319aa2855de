package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/sortviz/internal/ir"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func finishedResult(id string) ir.Result {
	return ir.Result{
		RunInfo: ir.RunInfo{ID: id, Algorithm: ir.AlgorithmBubble, Size: 3, Input: []int{2, 1, 3}},
		Outcome: ir.OutcomeCompleted,
		Stats:   ir.Stats{Comparisons: 2, Swaps: 1},
		Output:  []int{1, 2, 3},
		Events:  4,
	}
}

func playRun(r *Recorder, res ir.Result, trace []ir.StepEvent) {
	r.OnStart(res.RunInfo)
	for _, e := range trace {
		r.OnStep(e)
	}
	r.OnFinish(res)
}

func TestRecorder_WritesRunWithTrace(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	r := NewRecorder(ctx, s, true, quietLogger())

	trace := createTestTrace()
	playRun(r, finishedResult("run-1"), trace)
	if err := r.Err(); err != nil {
		t.Fatalf("Recorder.Err() = %v", err)
	}

	rec, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	want, _ := ir.TraceHash(trace)
	if rec.TraceHash != want {
		t.Errorf("TraceHash = %q, want %q", rec.TraceHash, want)
	}

	events, err := s.ReadEvents(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadEvents() failed: %v", err)
	}
	if len(events) != len(trace) {
		t.Errorf("len(events) = %d, want %d", len(events), len(trace))
	}
}

func TestRecorder_WithoutTraces(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	r := NewRecorder(ctx, s, false, quietLogger())

	playRun(r, finishedResult("run-1"), createTestTrace())

	rec, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if rec.TraceHash != "" {
		t.Errorf("TraceHash = %q, want empty", rec.TraceHash)
	}
	events, _ := s.ReadEvents(ctx, "run-1")
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}

func TestRecorder_CoalescedTraceNotStored(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	r := NewRecorder(ctx, s, true, quietLogger())

	res := finishedResult("run-1")
	res.Dropped = 1
	playRun(r, res, createTestTrace()[1:])

	rec, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if rec.TraceHash != "" || rec.Dropped != 1 {
		t.Errorf("TraceHash/Dropped = %q/%d, want empty/1", rec.TraceHash, rec.Dropped)
	}
}

func TestRecorder_ReportsWriteError(t *testing.T) {
	s := createTestStore(t)
	r := NewRecorder(context.Background(), s, false, quietLogger())
	s.Close()

	playRun(r, finishedResult("run-1"), nil)
	if r.Err() == nil {
		t.Error("Recorder.Err() = nil, want write error on closed store")
	}
}
