package services

import (
	"sync"
	"testing"
	"time"

	"competition-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCompetitionRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	f.competition(t, "Winter Open")

	_, err := f.competitions.CreateCompetition(f.ctx, CompetitionInput{Name: "Winter Open", Date: time.Now()})
	assert.ErrorIs(t, err, ErrCompetitionNameTaken)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetCompetitionLoadsContributions(t *testing.T) {
	f := newFixture(t)
	c := f.competition(t, "Winter Open")
	f.contribution(t, c.ID, models.ModePartial, 50)
	f.contribution(t, c.ID, models.ModeFull, 120.5)

	got, err := f.competitions.GetCompetition(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Winter Open", got.Name)
	assert.True(t, got.Date.Equal(c.Date))
	require.Len(t, got.Contributions, 2)
	assert.Equal(t, models.ModeFull, got.Contributions[0].Mode)
	assert.Equal(t, 120.5, got.Contributions[0].Price)
	assert.Equal(t, models.ModePartial, got.Contributions[1].Mode)

	_, err = f.competitions.GetCompetition(f.ctx, c.ID+100)
	assert.ErrorIs(t, err, ErrCompetitionNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCompetitions(t *testing.T) {
	f := newFixture(t)

	list, err := f.competitions.ListCompetitions(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	f.competition(t, "Winter Open")
	f.competition(t, "Summer Cup")

	list, err = f.competitions.ListCompetitions(f.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUpdateCompetitionPatchesOnlySuppliedFields(t *testing.T) {
	f := newFixture(t)
	description := "indoor"
	c, err := f.competitions.CreateCompetition(f.ctx, CompetitionInput{
		Name:        "Winter Open",
		Date:        time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		Description: &description,
	})
	require.NoError(t, err)

	renamed := "Winter Open 2025"
	got, err := f.competitions.UpdateCompetition(f.ctx, c.ID, CompetitionPatch{Name: &renamed})
	require.NoError(t, err)
	assert.Equal(t, renamed, got.Name)
	assert.True(t, got.Date.Equal(c.Date))
	require.NotNil(t, got.Description)
	assert.Equal(t, "indoor", *got.Description)

	unchanged, err := f.competitions.UpdateCompetition(f.ctx, c.ID, CompetitionPatch{})
	require.NoError(t, err)
	assert.Equal(t, renamed, unchanged.Name)

	_, err = f.competitions.UpdateCompetition(f.ctx, c.ID+100, CompetitionPatch{Name: &renamed})
	assert.ErrorIs(t, err, ErrCompetitionNotFound)

	f.competition(t, "Summer Cup")
	taken := "Summer Cup"
	_, err = f.competitions.UpdateCompetition(f.ctx, c.ID, CompetitionPatch{Name: &taken})
	assert.ErrorIs(t, err, ErrCompetitionNameTaken)
}

func TestDeleteCompetitionCascades(t *testing.T) {
	f := newFixture(t)
	c := f.competition(t, "Winter Open")
	f.contribution(t, c.ID, models.ModePartial, 50)
	f.contribution(t, c.ID, models.ModeFull, 100)
	p := f.participant(t, c.ID, "a@b.com")
	_, err := f.participants.RecordPayment(f.ctx, p.ID, models.ModeFull)
	require.NoError(t, err)
	cx := f.complex(t, c.ID, "Complex 1")
	_, err = f.complexes.RecordQualifyingVideo(f.ctx, cx.ID, p.ID, "https://video.example/1")
	require.NoError(t, err)
	_, err = f.complexes.RecordResult(f.ctx, cx.ID, p.ID, models.ViewRepetitions, "42")
	require.NoError(t, err)

	other := f.competition(t, "Summer Cup")
	f.contribution(t, other.ID, models.ModePartial, 30)
	f.participant(t, other.ID, "c@d.com")

	require.NoError(t, f.competitions.DeleteCompetition(f.ctx, c.ID))

	_, err = f.competitions.GetCompetition(f.ctx, c.ID)
	assert.ErrorIs(t, err, ErrCompetitionNotFound)
	assert.Equal(t, int64(1), f.count(t, "competitions"))
	assert.Equal(t, int64(1), f.count(t, "contributions"))
	assert.Equal(t, int64(1), f.count(t, "participants"))
	assert.Equal(t, int64(1), f.count(t, "payments"))
	assert.Equal(t, int64(0), f.count(t, "complexes"))
	assert.Equal(t, int64(0), f.count(t, "qualifying_videos"))
	assert.Equal(t, int64(0), f.count(t, "results"))

	err = f.competitions.DeleteCompetition(f.ctx, c.ID)
	assert.ErrorIs(t, err, ErrCompetitionNotFound)
}

func TestCreateContributionConflictsOnSameMode(t *testing.T) {
	f := newFixture(t)
	c := f.competition(t, "Winter Open")
	key := models.ContributionKey{CompetitionID: c.ID, Mode: models.ModePartial}

	_, err := f.competitions.CreateContribution(f.ctx, key, 50)
	require.NoError(t, err)

	_, err = f.competitions.CreateContribution(f.ctx, key, 60)
	assert.ErrorIs(t, err, ErrContributionExists)
	assert.ErrorIs(t, err, ErrConflict)

	got, err := f.competitions.GetContribution(f.ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Price)
}

func TestCreateContributionConcurrentInsertsOneWins(t *testing.T) {
	f := newFixture(t)
	c := f.competition(t, "Winter Open")
	key := models.ContributionKey{CompetitionID: c.ID, Mode: models.ModeFull}

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.competitions.CreateContribution(f.ctx, key, 100)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, ErrContributionExists):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, conflicts)
}

func TestCreateContributionErrors(t *testing.T) {
	f := newFixture(t)
	c := f.competition(t, "Winter Open")

	_, err := f.competitions.CreateContribution(f.ctx, models.ContributionKey{CompetitionID: c.ID + 100, Mode: models.ModeFull}, 10)
	assert.ErrorIs(t, err, ErrCompetitionNotFound)

	_, err = f.competitions.CreateContribution(f.ctx, models.ContributionKey{CompetitionID: c.ID, Mode: "vip"}, 10)
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.ErrorIs(t, err, ErrInvalidValue)

	// NUMERIC(10,2) holds at most 99999999.99
	_, err = f.competitions.CreateContribution(f.ctx, models.ContributionKey{CompetitionID: c.ID, Mode: models.ModeFull}, 1e8)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestUpdateAndDeleteContribution(t *testing.T) {
	f := newFixture(t)
	c := f.competition(t, "Winter Open")
	f.contribution(t, c.ID, models.ModePartial, 50)
	f.contribution(t, c.ID, models.ModeFull, 100)
	p := f.participant(t, c.ID, "a@b.com")
	_, err := f.participants.RecordPayment(f.ctx, p.ID, models.ModeFull)
	require.NoError(t, err)

	full := models.ContributionKey{CompetitionID: c.ID, Mode: models.ModeFull}
	price := 80.25
	got, err := f.competitions.UpdateContribution(f.ctx, full, ContributionPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, full, got.Key())
	assert.Equal(t, 80.25, got.Price)

	missing := models.ContributionKey{CompetitionID: c.ID + 100, Mode: models.ModeFull}
	_, err = f.competitions.UpdateContribution(f.ctx, missing, ContributionPatch{Price: &price})
	assert.ErrorIs(t, err, ErrContributionNotFound)

	require.NoError(t, f.competitions.DeleteContribution(f.ctx, full))
	payments, err := f.participants.ListPayments(f.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, models.ModePartial, payments[0].Mode)

	err = f.competitions.DeleteContribution(f.ctx, full)
	assert.ErrorIs(t, err, ErrContributionNotFound)

	remaining, err := f.competitions.ListContributions(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, models.ModePartial, remaining[0].Mode)
}
