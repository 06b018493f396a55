package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"callsheet/internal/breakdown"
	"callsheet/internal/logging"
	"callsheet/internal/normalize"
	"callsheet/internal/production"
	"callsheet/internal/services"
	"callsheet/internal/services/extract"
)

// Controller runs the two-stage extraction over a schedule's shoot days.
type Controller struct {
	store     *breakdown.Store
	extractor extract.DayExtractor
	logger    *slog.Logger
}

// New constructs a pipeline controller.
func New(store *breakdown.Store, extractor extract.DayExtractor, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{
		store:     store,
		extractor: extractor,
		logger:    logging.WithComponent(logger, "pipeline"),
	}
}

// Summary reports what one pipeline run accomplished.
type Summary struct {
	Stage1Done int
	Stage2Done int
	Failed     int
	Skipped    int
}

// Upload normalizes a raw upload and persists it as a new schedule with all
// days pending. Anomalies are reported, never fatal.
func (c *Controller) Upload(ctx context.Context, title string, raw normalize.RawUpload) (*breakdown.Schedule, []normalize.Anomaly, error) {
	snapshot, anomalies := normalize.Snapshot(raw)
	if len(snapshot.Days) == 0 {
		return nil, anomalies, services.Wrap(services.ErrValidation, "pipeline", "upload",
			"upload contains no usable days or scenes", errors.New("empty snapshot"))
	}
	if title == "" {
		title = raw.Title
	}
	if title == "" {
		title = "Untitled schedule"
	}

	schedule, err := c.store.CreateSchedule(ctx, title, snapshot)
	if err != nil {
		return nil, anomalies, services.Wrap(services.ErrStore, "pipeline", "upload", "persist schedule", err)
	}

	c.logger.Info("schedule uploaded",
		logging.Int64(logging.FieldSchedule, schedule.ID),
		logging.Int("days", len(snapshot.Days)),
		logging.Int("anomalies", len(anomalies)))
	return schedule, anomalies, nil
}

// Run advances every day of a schedule through both stages.
func (c *Controller) Run(ctx context.Context, scheduleID int64) (Summary, error) {
	summary := Summary{}
	if err := c.runStage1(ctx, scheduleID, &summary); err != nil {
		return summary, err
	}
	if err := c.runStage2(ctx, scheduleID, &summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// RunStage1 advances the schedule's pending days through structural parsing.
func (c *Controller) RunStage1(ctx context.Context, scheduleID int64) (Summary, error) {
	summary := Summary{}
	err := c.runStage1(ctx, scheduleID, &summary)
	return summary, err
}

// RunStage2 runs detail extraction for every day that finished stage one.
func (c *Controller) RunStage2(ctx context.Context, scheduleID int64) (Summary, error) {
	summary := Summary{}
	err := c.runStage2(ctx, scheduleID, &summary)
	return summary, err
}

func (c *Controller) runStage1(ctx context.Context, scheduleID int64, summary *Summary) error {
	days, err := c.store.DaysBySchedule(ctx, scheduleID)
	if err != nil {
		return services.Wrap(services.ErrStore, "pipeline", "stage1", "list days", err)
	}
	for _, day := range days {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if day.Status != breakdown.StatusPending {
			summary.Skipped++
			continue
		}
		if err := c.processStage1(ctx, day); err != nil {
			return err
		}
		summary.Stage1Done++
	}
	return nil
}

func (c *Controller) runStage2(ctx context.Context, scheduleID int64, summary *Summary) error {
	days, err := c.store.DaysBySchedule(ctx, scheduleID)
	if err != nil {
		return services.Wrap(services.ErrStore, "pipeline", "stage2", "list days", err)
	}
	for _, day := range days {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if day.Status != breakdown.StatusStage1Done {
			summary.Skipped++
			continue
		}
		// One failed day never blocks the rest; store errors do.
		if err := c.processStage2(ctx, day); err != nil {
			if errors.Is(err, errSuperseded) {
				summary.Skipped++
				continue
			}
			if errors.Is(err, services.ErrStore) || ctx.Err() != nil {
				return err
			}
			summary.Failed++
			continue
		}
		summary.Stage2Done++
	}
	return nil
}

// errSuperseded marks work dropped because another claim or a reset won.
var errSuperseded = errors.New("day superseded")

// processStage1 validates and normalizes one day's scene skeleton.
func (c *Controller) processStage1(ctx context.Context, day *breakdown.DayRecord) error {
	requestID := uuid.NewString()
	logger := c.dayLogger(day, requestID)

	claimed, err := c.store.ClaimDay(ctx, day.ID, day.Generation, requestID,
		[]breakdown.DayStatus{breakdown.StatusPending}, breakdown.StatusStage1Parsing)
	if err != nil {
		return services.Wrap(services.ErrStore, "pipeline", "stage1", "claim day", err)
	}
	if !claimed {
		logger.Debug("stage1 claim lost")
		return nil
	}

	if err := c.store.UpdateDayProgress(ctx, day.ID, "Parsing structure", 10, ""); err != nil {
		return services.Wrap(services.ErrStore, "pipeline", "stage1", "update progress", err)
	}

	scenes, err := day.Scenes()
	if err != nil {
		// Malformed payload is a parse anomaly; surface it on the day and move on.
		_, finishErr := c.store.FinishDay(ctx, day.ID, day.Generation, breakdown.StatusStage2Error, err.Error())
		if finishErr != nil {
			return services.Wrap(services.ErrStore, "pipeline", "stage1", "record parse failure", finishErr)
		}
		logger.Warn("stage1 parse failed", logging.Error(err))
		return nil
	}

	normalized := normalizeSkeleton(scenes, day.DayNumber)
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return services.Wrap(services.ErrParseAnomaly, "pipeline", "stage1", "encode scenes", err)
	}
	if _, err := c.store.UpdateDayScenes(ctx, day.ID, day.Generation, string(encoded)); err != nil {
		return services.Wrap(services.ErrStore, "pipeline", "stage1", "persist scenes", err)
	}

	applied, err := c.store.FinishDay(ctx, day.ID, day.Generation, breakdown.StatusStage1Done, "")
	if err != nil {
		return services.Wrap(services.ErrStore, "pipeline", "stage1", "finish day", err)
	}
	if !applied {
		logger.Debug("stage1 result superseded")
		return nil
	}
	logger.Info("stage1 complete", logging.Int("scenes", len(normalized)))
	return nil
}

// processStage2 sends one day to the extraction model and merges the result.
func (c *Controller) processStage2(ctx context.Context, day *breakdown.DayRecord) error {
	requestID := uuid.NewString()
	logger := c.dayLogger(day, requestID)

	claimed, err := c.store.ClaimDay(ctx, day.ID, day.Generation, requestID,
		[]breakdown.DayStatus{breakdown.StatusStage1Done}, breakdown.StatusStage2Processing)
	if err != nil {
		return services.Wrap(services.ErrStore, "pipeline", "stage2", "claim day", err)
	}
	if !claimed {
		logger.Debug("stage2 claim lost")
		return errSuperseded
	}

	if err := c.store.UpdateDayProgress(ctx, day.ID, "Extracting detail", 25, ""); err != nil {
		return services.Wrap(services.ErrStore, "pipeline", "stage2", "update progress", err)
	}

	scenes, err := day.Scenes()
	if err != nil {
		return c.failDay(ctx, day, logger, err)
	}

	result, err := c.extractor.ExtractDay(ctx, extract.DayRequest{
		DayNumber: day.DayNumber,
		Date:      day.Date,
		Location:  day.Location,
		Scenes:    scenes,
		RawText:   day.RawText,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return c.failDay(ctx, day, logger, err)
	}

	encoded, err := json.Marshal(result.Scenes)
	if err != nil {
		return c.failDay(ctx, day, logger, err)
	}
	applied, err := c.store.UpdateDayScenes(ctx, day.ID, day.Generation, string(encoded))
	if err != nil {
		return services.Wrap(services.ErrStore, "pipeline", "stage2", "persist scenes", err)
	}
	if !applied {
		logger.Debug("stage2 result superseded")
		return errSuperseded
	}

	applied, err = c.store.FinishDay(ctx, day.ID, day.Generation, breakdown.StatusStage2Done, "")
	if err != nil {
		return services.Wrap(services.ErrStore, "pipeline", "stage2", "finish day", err)
	}
	if !applied {
		logger.Debug("stage2 finish superseded")
		return errSuperseded
	}
	logger.Info("stage2 complete", logging.Int("scenes", len(result.Scenes)))
	return nil
}

// failDay records a per-day failure without aborting the run.
func (c *Controller) failDay(ctx context.Context, day *breakdown.DayRecord, logger *slog.Logger, cause error) error {
	applied, err := c.store.FinishDay(ctx, day.ID, day.Generation, breakdown.StatusStage2Error, cause.Error())
	if err != nil {
		return services.Wrap(services.ErrStore, "pipeline", "stage2", "record failure", err)
	}
	if !applied {
		logger.Debug("stage2 failure superseded")
		return errSuperseded
	}
	logger.Warn("stage2 failed", logging.Error(cause))
	return cause
}

// RetryDay bumps the day's generation, returning it to pending and
// invalidating any in-flight work, then runs it through both stages.
func (c *Controller) RetryDay(ctx context.Context, scheduleID int64, dayNumber int) error {
	day, err := c.store.DayByNumber(ctx, scheduleID, dayNumber)
	if err != nil {
		return services.Wrap(services.ErrStore, "pipeline", "retry", "find day", err)
	}
	if day == nil {
		return services.Wrap(services.ErrNotFound, "pipeline", "retry",
			fmt.Sprintf("schedule %d has no day %d", scheduleID, dayNumber), errors.New("day not found"))
	}

	reset, err := c.store.ResetDay(ctx, day.ID)
	if err != nil {
		return services.Wrap(services.ErrStore, "pipeline", "retry", "reset day", err)
	}
	c.logger.Info("day reset for retry",
		logging.Int64(logging.FieldSchedule, scheduleID),
		logging.Int(logging.FieldDay, dayNumber),
		logging.Int64("generation", reset.Generation))

	if err := c.processStage1(ctx, reset); err != nil {
		return err
	}
	reset, err = c.store.GetDay(ctx, reset.ID)
	if err != nil {
		return services.Wrap(services.ErrStore, "pipeline", "retry", "reload day", err)
	}
	if reset.Status != breakdown.StatusStage1Done {
		return nil
	}
	if err := c.processStage2(ctx, reset); err != nil && !errors.Is(err, errSuperseded) {
		return err
	}
	return nil
}

// Resume recovers after an unclean shutdown: days stuck in an in-flight
// status fall back to their stage entry point, then the latest schedule is
// run again. Earlier revisions stay where they stopped; their unfinished
// days describe a superseded draft and re-extracting them wastes model
// calls on scenes the current revision may have rewritten.
func (c *Controller) Resume(ctx context.Context) (Summary, error) {
	summary := Summary{}

	reset, err := c.store.ResetStuckProcessing(ctx)
	if err != nil {
		return summary, services.Wrap(services.ErrStore, "pipeline", "resume", "reset stuck days", err)
	}
	if reset > 0 {
		c.logger.Info("reset stuck days", logging.Int64("count", reset))
	}

	latest, err := c.store.LatestSchedule(ctx)
	if err != nil {
		return summary, services.Wrap(services.ErrStore, "pipeline", "resume", "find latest schedule", err)
	}
	if latest == nil {
		return summary, nil
	}
	return c.Run(ctx, latest.ID)
}

func (c *Controller) dayLogger(day *breakdown.DayRecord, requestID string) *slog.Logger {
	return c.logger.With(
		logging.Int64(logging.FieldSchedule, day.ScheduleID),
		logging.Int(logging.FieldDay, day.DayNumber),
		logging.String(logging.FieldRequestID, requestID),
	)
}

// normalizeSkeleton cleans up a day's scene list before extraction: numbers
// normalized, duplicates dropped first-wins, scenes sorted.
func normalizeSkeleton(scenes []production.Scene, dayNumber int) []production.Scene {
	seen := make(map[string]struct{}, len(scenes))
	out := make([]production.Scene, 0, len(scenes))
	for _, scene := range scenes {
		number := production.NormalizeSceneNumber(scene.SceneNumber)
		if number == "" {
			continue
		}
		if _, ok := seen[number]; ok {
			continue
		}
		seen[number] = struct{}{}
		scene.SceneNumber = number
		scene.DayNumber = dayNumber
		out = append(out, scene)
	}
	production.SortScenes(out)
	return out
}
