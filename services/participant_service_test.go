package services

import (
	"strings"
	"testing"

	"competition-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterParticipantWinterOpen(t *testing.T) {
	f := newFixture(t)
	c := f.competition(t, "Winter Open")
	f.contribution(t, c.ID, models.ModePartial, 50.00)

	p, err := f.participants.RegisterParticipant(f.ctx, c.ID, "A B", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, c.ID, p.CompetitionID)
	assert.False(t, p.IsQualified)
	assert.False(t, p.IsArrived)
	require.Len(t, p.Payments, 1)
	assert.Equal(t, models.ModePartial, p.Payments[0].Mode)
	assert.Equal(t, models.ContributionKey{CompetitionID: c.ID, Mode: models.ModePartial}, p.Payments[0].ContributionKey())
	assert.False(t, p.Payments[0].PayDatetime.IsZero())

	stored, err := f.participants.GetParticipant(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Payments, 1)

	_, err = f.participants.RegisterParticipant(f.ctx, c.ID, "A B", "a@b.com")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, int64(1), f.count(t, "participants"))
	assert.Equal(t, int64(1), f.count(t, "payments"))
}

func TestRegisterParticipantEmailUniqueAcrossCompetitions(t *testing.T) {
	f := newFixture(t)
	first := f.competition(t, "Winter Open")
	second := f.competition(t, "Summer Cup")
	f.contribution(t, first.ID, models.ModePartial, 50)
	f.contribution(t, second.ID, models.ModePartial, 50)
	f.participant(t, first.ID, "a@b.com")

	_, err := f.participants.RegisterParticipant(f.ctx, second.ID, "A B", "a@b.com")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterParticipantWritesNothingWithoutPartialTier(t *testing.T) {
	f := newFixture(t)
	c := f.competition(t, "Winter Open")
	f.contribution(t, c.ID, models.ModeFull, 100)

	_, err := f.participants.RegisterParticipant(f.ctx, c.ID, "A B", "a@b.com")
	assert.ErrorIs(t, err, ErrNoPartialContribution)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(0), f.count(t, "participants"))
	assert.Equal(t, int64(0), f.count(t, "payments"))

	// the email is free again once the tier exists
	f.contribution(t, c.ID, models.ModePartial, 50)
	p, err := f.participants.RegisterParticipant(f.ctx, c.ID, "A B", "a@b.com")
	require.NoError(t, err)
	assert.Len(t, p.Payments, 1)
}

func TestRegisterParticipantRejectsOverlongFullname(t *testing.T) {
	f := newFixture(t)
	c := f.competition(t, "Winter Open")
	f.contribution(t, c.ID, models.ModePartial, 50)

	_, err := f.participants.RegisterParticipant(f.ctx, c.ID, strings.Repeat("x", 256), "a@b.com")
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, int64(0), f.count(t, "participants"))
	assert.Equal(t, int64(0), f.count(t, "payments"))
}

func TestRegisterParticipantUnknownCompetition(t *testing.T) {
	f := newFixture(t)

	_, err := f.participants.RegisterParticipant(f.ctx, 999, "A B", "a@b.com")
	assert.ErrorIs(t, err, ErrCompetitionNotFound)
	assert.Equal(t, int64(0), f.count(t, "participants"))
}

func TestListParticipants(t *testing.T) {
	f := newFixture(t)
	c := f.competition(t, "Winter Open")
	other := f.competition(t, "Summer Cup")
	f.contribution(t, c.ID, models.ModePartial, 50)
	f.contribution(t, other.ID, models.ModePartial, 50)
	f.participant(t, c.ID, "a@b.com")
	f.participant(t, c.ID, "c@d.com")
	f.participant(t, other.ID, "e@f.com")

	list, err := f.participants.ListParticipants(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a@b.com", list[0].Email)
	assert.Equal(t, "c@d.com", list[1].Email)
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	c := f.competition(t, "Winter Open")
	f.contribution(t, c.ID, models.ModePartial, 50)
	p := f.participant(t, c.ID, "a@b.com")

	_, err := f.participants.RecordPayment(f.ctx, p.ID, models.ModeFull)
	assert.ErrorIs(t, err, ErrContributionNotFound, "no full tier yet")

	_, err = f.participants.RecordPayment(f.ctx, p.ID, models.ModePartial)
	assert.ErrorIs(t, err, ErrPaymentExists)

	f.contribution(t, c.ID, models.ModeFull, 100)
	payment, err := f.participants.RecordPayment(f.ctx, p.ID, models.ModeFull)
	require.NoError(t, err)
	assert.Equal(t, c.ID, payment.CompetitionID)

	_, err = f.participants.RecordPayment(f.ctx, p.ID+100, models.ModeFull)
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	payments, err := f.participants.ListPayments(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	_, err = f.participants.ListPayments(f.ctx, p.ID+100)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestDeleteParticipantCascades(t *testing.T) {
	f := newFixture(t)
	c := f.competition(t, "Winter Open")
	f.contribution(t, c.ID, models.ModePartial, 50)
	p := f.participant(t, c.ID, "a@b.com")
	keep := f.participant(t, c.ID, "c@d.com")
	cx := f.complex(t, c.ID, "Complex 1")
	_, err := f.complexes.RecordQualifyingVideo(f.ctx, cx.ID, p.ID, "https://video.example/1")
	require.NoError(t, err)
	_, err = f.complexes.RecordResult(f.ctx, cx.ID, p.ID, models.ViewKilograms, "102.5")
	require.NoError(t, err)

	require.NoError(t, f.participants.DeleteParticipant(f.ctx, p.ID))

	_, err = f.participants.GetParticipant(f.ctx, p.ID)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
	assert.Equal(t, int64(1), f.count(t, "payments"))
	assert.Equal(t, int64(0), f.count(t, "qualifying_videos"))
	assert.Equal(t, int64(0), f.count(t, "results"))

	_, err = f.participants.GetParticipant(f.ctx, keep.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, f.participants.DeleteParticipant(f.ctx, p.ID), ErrParticipantNotFound)
}
