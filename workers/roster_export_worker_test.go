package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"competition-system/models"
	"competition-system/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompetitions struct {
	list []models.Competition
	err  error
}

func (f fakeCompetitions) ListCompetitions(context.Context) ([]models.Competition, error) {
	return f.list, f.err
}

type fakeRosters struct {
	failFor map[int]bool
}

func (f fakeRosters) Build(_ context.Context, id int) (*services.Roster, error) {
	if f.failFor[id] {
		return nil, services.ErrCompetitionNotFound
	}
	return &services.Roster{
		Competition: models.Competition{ID: id, Name: map[int]string{1: "Winter Open", 2: "Summer Cup", 3: "Spring Throwdown"}[id]},
		Workbook:    []byte("xlsx"),
	}, nil
}

type fakeUploader struct {
	keys []string
	fail bool
}

func (f *fakeUploader) Put(_ context.Context, key string, body []byte, contentType string) (string, error) {
	if f.fail {
		return "", errors.New("bucket unreachable")
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example.com/" + key, nil
}

type countingRecorder map[string]int

func (c countingRecorder) RosterExport(outcome string) { c[outcome]++ }

func TestRosterKey(t *testing.T) {
	c := models.Competition{ID: 7, Name: "Winter Open: Masters"}
	day := time.Date(2025, time.January, 10, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "rosters/winter-open-masters-7/2025-01-10.xlsx", RosterKey(c, day))
}

func TestExportAllSkipsFailures(t *testing.T) {
	competitions := fakeCompetitions{list: []models.Competition{{ID: 1}, {ID: 2}, {ID: 3}}}
	uploader := &fakeUploader{}
	recorder := countingRecorder{}
	w := NewRosterExportWorker(competitions, fakeRosters{failFor: map[int]bool{2: true}}, uploader, recorder)
	w.now = func() time.Time { return time.Date(2025, time.January, 10, 3, 0, 0, 0, time.UTC) }

	exported, err := w.ExportAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, exported)
	assert.Equal(t, []string{
		"rosters/winter-open-1/2025-01-10.xlsx",
		"rosters/spring-throwdown-3/2025-01-10.xlsx",
	}, uploader.keys)
	assert.Equal(t, 2, recorder["success"])
	assert.Equal(t, 1, recorder["failure"])
}

func TestExportAllUploadFailure(t *testing.T) {
	competitions := fakeCompetitions{list: []models.Competition{{ID: 1}}}
	recorder := countingRecorder{}
	w := NewRosterExportWorker(competitions, fakeRosters{}, &fakeUploader{fail: true}, recorder)

	exported, err := w.ExportAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, exported)
	assert.Equal(t, 1, recorder["failure"])
}

func TestExportAllListFailure(t *testing.T) {
	w := NewRosterExportWorker(fakeCompetitions{err: services.ErrStorageUnavailable}, fakeRosters{}, &fakeUploader{}, nil)

	_, err := w.ExportAll(context.Background())
	assert.ErrorIs(t, err, services.ErrStorageUnavailable)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	w := NewRosterExportWorker(fakeCompetitions{}, fakeRosters{}, &fakeUploader{}, nil)

	err := w.Start(context.Background(), "not a cron")
	assert.Error(t, err)
}

func TestStartAndStop(t *testing.T) {
	w := NewRosterExportWorker(fakeCompetitions{}, fakeRosters{}, &fakeUploader{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx, "0 3 * * *"))
	w.Stop()
	w.Stop()
}
