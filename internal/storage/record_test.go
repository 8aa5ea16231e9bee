package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordCompletedGame(ctx context.Context, rec *GameRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func TestMultiRecorder_FansOutAndJoinsErrors(t *testing.T) {
	t.Parallel()

	rec := twoPlayerRecord("Alice")
	boom := errors.New("boom")

	failing := &mockRecorder{}
	failing.On("RecordCompletedGame", mock.Anything, rec).Return(boom)
	ok := &mockRecorder{}
	ok.On("RecordCompletedGame", mock.Anything, rec).Return(nil)

	err := MultiRecorder{failing, nil, ok}.RecordCompletedGame(context.Background(), rec)

	assert.ErrorIs(t, err, boom)
	failing.AssertExpectations(t)
	ok.AssertExpectations(t) // a failing sink does not stop the others
}

func TestMultiRecorder_Empty(t *testing.T) {
	t.Parallel()

	assert.NoError(t, MultiRecorder{}.RecordCompletedGame(context.Background(), &GameRecord{}))
}

func TestGameRecord_Helpers(t *testing.T) {
	t.Parallel()

	rec := twoPlayerRecord("Alice")
	rec.EndedAt = rec.StartedAt.Add(90 * time.Second)

	assert.Equal(t, []string{"Alice", "Bob"}, rec.PlayerNames())
	assert.Equal(t, 90*time.Second, rec.Duration())
}
