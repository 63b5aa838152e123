package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/progress-hub/internal/domain/progress"
	"github.com/learnhub/progress-hub/internal/domain/shared"
)

func TestGetProgress(t *testing.T) {
	p, err := progress.NewProgress("user-1", "lesson-1", "req-1", progress.StatusComplete)
	require.NoError(t, err)

	handler := NewGetProgressHandler(&fakeProgressRepo{rows: []*progress.Progress{p}})

	got, err := handler.Handle(context.Background(), GetProgressQuery{
		UserID:   "user-1",
		LessonID: "lesson-1",
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, progress.StatusComplete, got.Status)
}

func TestGetProgress_NotFound(t *testing.T) {
	handler := NewGetProgressHandler(&fakeProgressRepo{})

	_, err := handler.Handle(context.Background(), GetProgressQuery{
		UserID:   "user-1",
		LessonID: "lesson-1",
	})
	assert.ErrorIs(t, err, shared.ErrProgressNotFound)
}

func TestGetProgress_Validation(t *testing.T) {
	handler := NewGetProgressHandler(&fakeProgressRepo{})

	_, err := handler.Handle(context.Background(), GetProgressQuery{UserID: "user-1"})
	assert.True(t, shared.IsValidation(err))
}

func TestGetProgressHistory(t *testing.T) {
	p, err := progress.NewProgress("user-1", "lesson-1", "req-1", progress.StatusPending)
	require.NoError(t, err)

	created := progress.NewHistoryEntry(p, nil, "req-1")
	old := p.Status
	require.NoError(t, p.TransitionTo(progress.StatusComplete))
	changed := progress.NewHistoryEntry(p, &old, "req-2")

	repo := &fakeHistoryRepo{history: []progress.HistoryEntry{created, changed}}
	handler := NewGetProgressHistoryHandler(repo)

	entries, err := handler.Handle(context.Background(), GetProgressHistoryQuery{
		UserID:   "user-1",
		LessonID: "lesson-1",
	})
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].OldStatus)
	require.NotNil(t, entries[1].OldStatus)
	assert.Equal(t, progress.StatusPending, *entries[1].OldStatus)
}

func TestGetProgressHistory_EmptyIsNotAnError(t *testing.T) {
	handler := NewGetProgressHistoryHandler(&fakeHistoryRepo{})

	entries, err := handler.Handle(context.Background(), GetProgressHistoryQuery{
		UserID:   "user-1",
		LessonID: "lesson-1",
	})
	require.NoError(t, err)
	assert.Empty(t, entries)
}
