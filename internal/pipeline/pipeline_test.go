package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"callsheet/internal/breakdown"
	"callsheet/internal/logging"
	"callsheet/internal/normalize"
	"callsheet/internal/pipeline"
	"callsheet/internal/services/extract"
	"callsheet/internal/testsupport"
)

type stubExtractor struct {
	failDays map[int]error
	calls    int
}

func (s *stubExtractor) ExtractDay(ctx context.Context, req extract.DayRequest) (extract.DayResult, error) {
	s.calls++
	if err := s.failDays[req.DayNumber]; err != nil {
		return extract.DayResult{}, err
	}
	out := req.Scenes
	for i := range out {
		out[i].Synopsis = fmt.Sprintf("Extracted synopsis for scene %s", out[i].SceneNumber)
	}
	return extract.DayResult{Scenes: out}, nil
}

func newController(t *testing.T, extractor extract.DayExtractor) (*pipeline.Controller, *breakdown.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	return pipeline.New(store, extractor, logging.NewNop()), store
}

func rawUpload() normalize.RawUpload {
	return normalize.RawUpload{
		Title: "Pink Revision",
		Days: []normalize.RawDay{
			{
				DayNumber: "1",
				Date:      "2026-03-02",
				RawText:   "DAY 1 -- Scenes 1, 2",
				Scenes: []normalize.RawScene{
					{SceneNumber: " 1", Slugline: "INT. KITCHEN - DAY", Cast: []string{"1"}},
					{SceneNumber: "2", Slugline: "EXT. STREET - NIGHT", Cast: []string{"1", "2"}},
				},
			},
			{
				DayNumber: "2",
				Date:      "2026-03-03",
				RawText:   "DAY 2 -- Scene 3",
				Scenes: []normalize.RawScene{
					{SceneNumber: "3", Slugline: "INT. CELLAR - NIGHT", Cast: []string{"2"}},
				},
			},
		},
		Cast: []normalize.RawCastEntry{
			{Number: "1", Name: "Alice Smith"},
			{Number: "2", Name: "Bob Jones"},
		},
	}
}

func TestUploadAndRunBothStages(t *testing.T) {
	extractor := &stubExtractor{}
	controller, store := newController(t, extractor)
	ctx := context.Background()

	schedule, anomalies, err := controller.Upload(ctx, "", rawUpload())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(anomalies) != 0 {
		t.Fatalf("unexpected anomalies: %+v", anomalies)
	}
	if schedule.Title != "Pink Revision" {
		t.Fatalf("title = %q", schedule.Title)
	}

	summary, err := controller.Run(ctx, schedule.ID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Stage1Done != 2 || summary.Stage2Done != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if extractor.calls != 2 {
		t.Fatalf("extractor called %d times, want 2", extractor.calls)
	}

	days, err := store.DaysBySchedule(ctx, schedule.ID)
	if err != nil {
		t.Fatalf("days: %v", err)
	}
	for _, day := range days {
		if day.Status != breakdown.StatusStage2Done {
			t.Fatalf("day %d status = %s, want stage2_done", day.DayNumber, day.Status)
		}
		scenes, err := day.Scenes()
		if err != nil {
			t.Fatalf("scenes: %v", err)
		}
		for _, scene := range scenes {
			if scene.Synopsis == "" {
				t.Fatalf("scene %s missing extracted synopsis", scene.SceneNumber)
			}
		}
	}
}

func TestStage2FailureIsIsolatedPerDay(t *testing.T) {
	extractor := &stubExtractor{failDays: map[int]error{2: errors.New("model refused")}}
	controller, store := newController(t, extractor)
	ctx := context.Background()

	schedule, _, err := controller.Upload(ctx, "", rawUpload())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	summary, err := controller.Run(ctx, schedule.ID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Stage2Done != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	dayOne, err := store.DayByNumber(ctx, schedule.ID, 1)
	if err != nil {
		t.Fatalf("day 1: %v", err)
	}
	if dayOne.Status != breakdown.StatusStage2Done {
		t.Fatalf("day 1 status = %s", dayOne.Status)
	}
	dayTwo, err := store.DayByNumber(ctx, schedule.ID, 2)
	if err != nil {
		t.Fatalf("day 2: %v", err)
	}
	if dayTwo.Status != breakdown.StatusStage2Error {
		t.Fatalf("day 2 status = %s", dayTwo.Status)
	}
	if dayTwo.ErrorMessage == "" {
		t.Fatal("day 2 missing error message")
	}
}

func TestRetryDayAfterFailure(t *testing.T) {
	extractor := &stubExtractor{failDays: map[int]error{2: errors.New("model refused")}}
	controller, store := newController(t, extractor)
	ctx := context.Background()

	schedule, _, err := controller.Upload(ctx, "", rawUpload())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := controller.Run(ctx, schedule.ID); err != nil {
		t.Fatalf("run: %v", err)
	}

	before, err := store.DayByNumber(ctx, schedule.ID, 2)
	if err != nil {
		t.Fatalf("day 2: %v", err)
	}

	// Clear the failure and retry just that day.
	extractor.failDays = nil
	if err := controller.RetryDay(ctx, schedule.ID, 2); err != nil {
		t.Fatalf("retry: %v", err)
	}

	after, err := store.DayByNumber(ctx, schedule.ID, 2)
	if err != nil {
		t.Fatalf("day 2: %v", err)
	}
	if after.Status != breakdown.StatusStage2Done {
		t.Fatalf("status = %s, want stage2_done", after.Status)
	}
	if after.Generation != before.Generation+1 {
		t.Fatalf("generation = %d, want %d", after.Generation, before.Generation+1)
	}
}

func TestRetryDayUnknownDay(t *testing.T) {
	controller, _ := newController(t, &stubExtractor{})
	err := controller.RetryDay(context.Background(), 99, 1)
	if err == nil {
		t.Fatal("expected error for unknown day")
	}
}

func TestResumeFinishesInterruptedWork(t *testing.T) {
	extractor := &stubExtractor{}
	controller, store := newController(t, extractor)
	ctx := context.Background()

	schedule, _, err := controller.Upload(ctx, "", rawUpload())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	// Simulate a crash mid-stage1 on day 1.
	days, err := store.DaysBySchedule(ctx, schedule.ID)
	if err != nil {
		t.Fatalf("days: %v", err)
	}
	if _, err := store.ClaimDay(ctx, days[0].ID, days[0].Generation, "stale",
		[]breakdown.DayStatus{breakdown.StatusPending}, breakdown.StatusStage1Parsing); err != nil {
		t.Fatalf("claim: %v", err)
	}

	summary, err := controller.Resume(ctx)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if summary.Stage2Done != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if health.Done != 2 || health.Processing != 0 {
		t.Fatalf("unexpected health: %+v", health)
	}
}

func TestResumeRunsOnlyLatestSchedule(t *testing.T) {
	extractor := &stubExtractor{}
	controller, store := newController(t, extractor)
	ctx := context.Background()

	superseded, _, err := controller.Upload(ctx, "White Draft", rawUpload())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	latest, _, err := controller.Upload(ctx, "Blue Revision", rawUpload())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	summary, err := controller.Resume(ctx)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if summary.Stage2Done != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if extractor.calls != 2 {
		t.Fatalf("extractor called %d times, want 2", extractor.calls)
	}

	for _, day := range mustDays(t, store, latest.ID) {
		if day.Status != breakdown.StatusStage2Done {
			t.Fatalf("latest day %d status = %s, want stage2_done", day.DayNumber, day.Status)
		}
	}
	for _, day := range mustDays(t, store, superseded.ID) {
		if day.Status != breakdown.StatusPending {
			t.Fatalf("superseded day %d status = %s, want pending", day.DayNumber, day.Status)
		}
	}

	// Everything still waiting belongs to the superseded revision.
	pending, err := store.DaysByStatus(ctx, breakdown.StatusPending)
	if err != nil {
		t.Fatalf("pending days: %v", err)
	}
	for _, day := range pending {
		if day.ScheduleID != superseded.ID {
			t.Fatalf("pending day %d belongs to schedule %d", day.DayNumber, day.ScheduleID)
		}
	}
}

func mustDays(t *testing.T, store *breakdown.Store, scheduleID int64) []*breakdown.DayRecord {
	t.Helper()
	days, err := store.DaysBySchedule(context.Background(), scheduleID)
	if err != nil {
		t.Fatalf("days for schedule %d: %v", scheduleID, err)
	}
	return days
}
