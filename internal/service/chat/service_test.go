package chat_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/hirex-ai/hirex/backend/internal/model/chat"
	chat "github.com/hirex-ai/hirex/backend/internal/service/chat"
)

func TestServiceGetSession(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	got, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	_, err := svc.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, chat.ErrSessionNotFound)

	_, err = svc.GetSession(ctx, "")
	assert.ErrorIs(t, err, chat.ErrSessionRequired)
}

func TestServiceAppendAndTranscript(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.AppendTurns(ctx, session.ID,
		model.Turn{Speaker: model.User, Text: "A"},
		model.Turn{Speaker: model.Assistant, Text: "B"},
	))
	require.NoError(t, svc.AppendTurns(ctx, session.ID, model.Turn{Speaker: model.User, Text: "C"}))

	turns, err := svc.Transcript(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{turns[0].Text, turns[1].Text, turns[2].Text})
	for _, turn := range turns {
		assert.Equal(t, session.ID, turn.SessionID)
		assert.False(t, turn.CreatedAt.IsZero())
	}
}

func TestServiceSessionsAreIsolated(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	first, _ := svc.CreateSession(ctx)
	second, _ := svc.CreateSession(ctx)

	require.NoError(t, svc.AppendTurns(ctx, first.ID, model.Turn{Speaker: model.User, Text: "only first"}))

	turns, err := svc.Transcript(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestServiceClearIsIdempotent(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx)
	require.NoError(t, svc.AppendTurns(ctx, session.ID, model.Turn{Speaker: model.User, Text: "A"}))

	require.NoError(t, svc.Clear(ctx, session.ID))
	require.NoError(t, svc.Clear(ctx, session.ID))

	turns, err := svc.Transcript(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, turns)

	assert.ErrorIs(t, svc.Clear(ctx, "missing"), chat.ErrSessionNotFound)
}

func TestServiceDeleteSession(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx)

	require.NoError(t, svc.DeleteSession(ctx, session.ID))
	_, err := svc.Transcript(ctx, session.ID)
	assert.ErrorIs(t, err, chat.ErrSessionNotFound)
	assert.ErrorIs(t, svc.DeleteSession(ctx, session.ID), chat.ErrSessionNotFound)
}

func TestServiceConcurrentAppends(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.AppendTurns(ctx, session.ID,
				model.Turn{Speaker: model.User, Text: "q"},
				model.Turn{Speaker: model.Assistant, Text: "a"},
			)
		}()
	}
	wg.Wait()

	turns, err := svc.Transcript(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, turns, 100)
	for i := 0; i < len(turns); i += 2 {
		assert.Equal(t, model.User, turns[i].Speaker)
		assert.Equal(t, model.Assistant, turns[i+1].Speaker)
	}
}
