package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirex-ai/hirex/backend/internal/analysis/topic"
	"github.com/hirex-ai/hirex/backend/internal/model/chat"
	"github.com/hirex-ai/hirex/backend/internal/service/ai"
	"github.com/hirex-ai/hirex/backend/internal/service/ai/aitest"
	chatservice "github.com/hirex-ai/hirex/backend/internal/service/chat"
)

type fixture struct {
	dispatcher *Dispatcher
	sessions   *chatservice.Service
	fake       *aitest.ChatModel
	sessionID  string
}

func newFixture(t *testing.T, fake *aitest.ChatModel, streaming bool) fixture {
	t.Helper()
	ctx := context.Background()

	aiSvc, err := ai.NewService(ctx, fake, ai.Options{Streaming: streaming}, nil)
	require.NoError(t, err)

	sessions := chatservice.NewService()
	session, err := sessions.CreateSession(ctx)
	require.NoError(t, err)

	return fixture{
		dispatcher: NewDispatcher(topic.NewGate(topic.DefaultKeywords...), sessions, aiSvc, nil),
		sessions:   sessions,
		fake:       fake,
		sessionID:  session.ID,
	}
}

func TestRespondInScopeCallsModel(t *testing.T) {
	f := newFixture(t, &aitest.ChatModel{Reply: "Lead with impact."}, false)
	ctx := context.Background()

	exchange, err := f.dispatcher.Respond(ctx, f.sessionID, "Can you give me resume advice?")
	require.NoError(t, err)

	assert.True(t, exchange.InScope)
	assert.Equal(t, chat.Assistant, exchange.Assistant.Speaker)
	assert.Equal(t, "Lead with impact.", exchange.Assistant.Text)
	assert.Len(t, f.fake.Calls(), 1)

	turns, err := f.sessions.Transcript(ctx, f.sessionID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, chat.User, turns[0].Speaker)
	assert.Equal(t, "Can you give me resume advice?", turns[0].Text)
	assert.Equal(t, "Lead with impact.", turns[1].Text)
}

func TestRespondOutOfScopeBypassesModel(t *testing.T) {
	f := newFixture(t, &aitest.ChatModel{Reply: "should not be used"}, false)
	ctx := context.Background()

	exchange, err := f.dispatcher.Respond(ctx, f.sessionID, "What's your favorite movie?")
	require.NoError(t, err)

	assert.False(t, exchange.InScope)
	assert.Equal(t, topic.OutOfScopeReply, exchange.Assistant.Text)
	assert.Equal(t, "I'm sorry, that's outside my scope of expertise. I'm focused on helping with interview and resume topics. Would you like to try rephrasing your question?", exchange.Assistant.Text)
	assert.Empty(t, f.fake.Calls())

	turns, err := f.sessions.Transcript(ctx, f.sessionID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.True(t, turns[0].OutOfScope)
	assert.True(t, turns[1].OutOfScope)
}

func TestRespondModelFailureSurfacesAndAppendsNothing(t *testing.T) {
	boom := errors.New("authentication failed")
	f := newFixture(t, &aitest.ChatModel{Err: boom}, false)
	ctx := context.Background()

	_, err := f.dispatcher.Respond(ctx, f.sessionID, "interview tips")
	require.ErrorIs(t, err, boom)

	turns, err := f.sessions.Transcript(ctx, f.sessionID)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRespondEmptyReplyAppendsNothing(t *testing.T) {
	for _, streaming := range []bool{false, true} {
		f := newFixture(t, &aitest.ChatModel{Reply: ""}, streaming)
		ctx := context.Background()

		_, err := f.dispatcher.Stream(ctx, f.sessionID, "interview tips", nil)
		require.ErrorIs(t, err, ErrEmptyReply, "streaming=%v", streaming)

		turns, err := f.sessions.Transcript(ctx, f.sessionID)
		require.NoError(t, err)
		assert.Empty(t, turns, "streaming=%v", streaming)
	}
}

func TestRespondRejectsEmptyInput(t *testing.T) {
	f := newFixture(t, &aitest.ChatModel{}, false)

	_, err := f.dispatcher.Respond(context.Background(), f.sessionID, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestRespondUnknownSession(t *testing.T) {
	f := newFixture(t, &aitest.ChatModel{}, false)

	_, err := f.dispatcher.Respond(context.Background(), "missing", "job search")
	assert.ErrorIs(t, err, chatservice.ErrSessionNotFound)
}

func TestRespondWithoutModel(t *testing.T) {
	sessions := chatservice.NewService()
	ctx := context.Background()
	session, _ := sessions.CreateSession(ctx)
	d := NewDispatcher(nil, sessions, nil, nil)

	_, err := d.Respond(ctx, session.ID, "career change")
	assert.ErrorIs(t, err, ErrModelUnavailable)

	exchange, err := d.Respond(ctx, session.ID, "tell me a joke")
	require.NoError(t, err)
	assert.Equal(t, topic.OutOfScopeReply, exchange.Assistant.Text)
}

func TestRespondForwardsPriorInScopeTurns(t *testing.T) {
	f := newFixture(t, &aitest.ChatModel{Reply: "answer"}, false)
	ctx := context.Background()

	_, err := f.dispatcher.Respond(ctx, f.sessionID, "interview prep?")
	require.NoError(t, err)
	_, err = f.dispatcher.Respond(ctx, f.sessionID, "weather?")
	require.NoError(t, err)
	_, err = f.dispatcher.Respond(ctx, f.sessionID, "and my resume?")
	require.NoError(t, err)

	calls := f.fake.Calls()
	require.Len(t, calls, 2)
	// first exchange + new question
	require.Len(t, calls[1], 3)
	assert.Equal(t, "interview prep?", calls[1][0].Content)
	assert.Equal(t, "and my resume?", calls[1][2].Content)
}

func TestStreamEmitsDeltas(t *testing.T) {
	f := newFixture(t, &aitest.ChatModel{Reply: "Practice the STAR method."}, true)
	ctx := context.Background()

	var deltas []string
	exchange, err := f.dispatcher.Stream(ctx, f.sessionID, "interview tips", func(delta string) {
		deltas = append(deltas, delta)
	})
	require.NoError(t, err)

	assert.Greater(t, len(deltas), 1)
	assert.Equal(t, "Practice the STAR method.", strings.Join(deltas, ""))
	assert.Equal(t, "Practice the STAR method.", exchange.Assistant.Text)
}

func TestStreamOutOfScopeSingleDelta(t *testing.T) {
	f := newFixture(t, &aitest.ChatModel{Reply: "unused"}, true)

	var deltas []string
	_, err := f.dispatcher.Stream(context.Background(), f.sessionID, "hello there", func(delta string) {
		deltas = append(deltas, delta)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{topic.OutOfScopeReply}, deltas)
}

func TestStreamFallsBackToGenerateWhenDisabled(t *testing.T) {
	f := newFixture(t, &aitest.ChatModel{Reply: "Network with alumni."}, false)

	var deltas []string
	_, err := f.dispatcher.Stream(context.Background(), f.sessionID, "job search", func(delta string) {
		deltas = append(deltas, delta)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Network with alumni."}, deltas)
}
