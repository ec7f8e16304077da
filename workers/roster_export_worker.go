package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"competition-system/models"
	"competition-system/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/gosimple/slug"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ObjectUploader stores an exported file and returns where it can be fetched.
type ObjectUploader interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type competitionLister interface {
	ListCompetitions(ctx context.Context) ([]models.Competition, error)
}

type rosterBuilder interface {
	Build(ctx context.Context, competitionID int) (*services.Roster, error)
}

// ExportRecorder counts export outcomes.
type ExportRecorder interface {
	RosterExport(outcome string)
}

// RosterExportWorker periodically uploads every competition's roster workbook.
type RosterExportWorker struct {
	competitions competitionLister
	rosters      rosterBuilder
	uploader     ObjectUploader
	recorder     ExportRecorder
	now          func() time.Time

	scheduler gocron.Scheduler
	stopOnce  sync.Once
}

func NewRosterExportWorker(competitions competitionLister, rosters rosterBuilder, uploader ObjectUploader, recorder ExportRecorder) *RosterExportWorker {
	return &RosterExportWorker{
		competitions: competitions,
		rosters:      rosters,
		uploader:     uploader,
		recorder:     recorder,
		now:          time.Now,
	}
}

// RosterKey is the object key of a competition's roster for day.
func RosterKey(c models.Competition, day time.Time) string {
	return fmt.Sprintf("rosters/%s-%d/%s.xlsx", slug.Make(c.Name), c.ID, day.UTC().Format("2006-01-02"))
}

// Start schedules ExportAll on the cron expression until ctx is done or Stop is called.
func (w *RosterExportWorker) Start(ctx context.Context, cronExpr string) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			exported, err := w.ExportAll(ctx)
			if err != nil {
				slog.Error("Roster export run failed", "error", err)
				return
			}
			slog.Info("Roster export run finished", "exported", exported)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("failed to schedule roster export %q: %w", cronExpr, err)
	}

	w.scheduler = sched
	sched.Start()
	slog.Info("Roster export worker started", "schedule", cronExpr)

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

// Stop waits for a running export to finish.
func (w *RosterExportWorker) Stop() {
	if w.scheduler == nil {
		return
	}
	w.stopOnce.Do(func() {
		if err := w.scheduler.Shutdown(); err != nil {
			slog.Warn("Roster export scheduler shutdown", "error", err)
		}
	})
}

// ExportAll uploads one workbook per competition and returns how many succeeded. A
// failing competition is logged and skipped; only failing to list competitions aborts.
func (w *RosterExportWorker) ExportAll(ctx context.Context) (int, error) {
	competitions, err := w.competitions.ListCompetitions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list competitions: %w", err)
	}

	day := w.now()
	exported := 0
	for _, c := range competitions {
		if ctx.Err() != nil {
			return exported, ctx.Err()
		}

		roster, err := w.rosters.Build(ctx, c.ID)
		if err != nil {
			w.record("failure")
			slog.Error("Failed to build roster", "competition_id", c.ID, "error", err)
			continue
		}

		key := RosterKey(roster.Competition, day)
		url, err := w.uploader.Put(ctx, key, roster.Workbook, xlsxContentType)
		if err != nil {
			w.record("failure")
			slog.Error("Failed to upload roster", "competition_id", c.ID, "key", key, "error", err)
			continue
		}

		w.record("success")
		exported++
		slog.Info("Exported roster", "competition_id", c.ID, "url", url)
	}
	return exported, nil
}

func (w *RosterExportWorker) record(outcome string) {
	if w.recorder != nil {
		w.recorder.RosterExport(outcome)
	}
}
