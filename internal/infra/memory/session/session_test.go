package infra_memory_session

import (
	"context"
	"testing"

	"github.com/NicolasKocher/sprint-poker/internal/model"
	usecase_session "github.com/NicolasKocher/sprint-poker/internal/usecase/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() model.Session {
	anchor := int64(1700000000123)
	return model.Session{
		ID:     model.RoomCode("ABC123"),
		HostID: "HOST00000001",
		Participants: []model.Participant{
			{ID: "HOST00000001", Name: "Alice"},
			{ID: "USER00000002", Name: "Bob"},
		},
		Votes: map[string]model.TShirtSize{
			"HOST00000001": model.SizeM,
		},
		GameState:       model.StateVoting,
		VotingStartTime: &anchor,
	}
}

func TestRoundTripFidelity(t *testing.T) {
	ctx := context.Background()
	driver := New()
	want := sampleSession()

	require.NoError(t, driver.Save(ctx, want))
	got, err := driver.Load(ctx, want.ID)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadReturnsIsolatedCopies(t *testing.T) {
	ctx := context.Background()
	driver := New()
	require.NoError(t, driver.Save(ctx, sampleSession()))

	got, err := driver.Load(ctx, sampleSession().ID)
	require.NoError(t, err)

	got.Participants[0].Name = "Mallory"
	got.Votes["HOST00000001"] = model.SizeXL
	*got.VotingStartTime = 0

	fresh, err := driver.Load(ctx, sampleSession().ID)
	require.NoError(t, err)
	assert.Equal(t, sampleSession(), fresh)
}

func TestSaveOverwritesWholeRecord(t *testing.T) {
	ctx := context.Background()
	driver := New()
	require.NoError(t, driver.Save(ctx, sampleSession()))

	replacement := sampleSession()
	replacement.GameState = model.StateIdle
	replacement.Votes = map[string]model.TShirtSize{}
	replacement.VotingStartTime = nil
	require.NoError(t, driver.Save(ctx, replacement))

	got, err := driver.Load(ctx, replacement.ID)
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
}

func TestLoadMissing(t *testing.T) {
	driver := New()

	_, err := driver.Load(context.Background(), model.RoomCode("NOPE00"))

	assert.ErrorIs(t, err, usecase_session.ErrSessionNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	driver := New()
	require.NoError(t, driver.Save(ctx, sampleSession()))

	require.NoError(t, driver.Delete(ctx, sampleSession().ID))

	_, err := driver.Load(ctx, sampleSession().ID)
	assert.ErrorIs(t, err, usecase_session.ErrSessionNotFound)

	// Deleting an absent record stays quiet, matching overwrite semantics.
	assert.NoError(t, driver.Delete(ctx, sampleSession().ID))
}
