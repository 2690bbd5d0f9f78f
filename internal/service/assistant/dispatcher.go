// Package assistant routes each user question either to the model or to the
// fixed out-of-scope reply, and records the exchange in the session.
package assistant

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/hirex-ai/hirex/backend/internal/analysis/topic"
	"github.com/hirex-ai/hirex/backend/internal/model/chat"
	"github.com/hirex-ai/hirex/backend/pkg/logger"
)

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrModelUnavailable = errors.New("model is not configured")
	ErrEmptyReply       = errors.New("model returned an empty reply")
)

// Sessions is the subset of the session store the dispatcher needs.
type Sessions interface {
	Transcript(ctx context.Context, sessionID string) ([]chat.Turn, error)
	AppendTurns(ctx context.Context, sessionID string, turns ...chat.Turn) error
}

// Model produces replies for in-scope questions.
type Model interface {
	GenerateReply(ctx context.Context, history []chat.Turn, userText string) (*schema.Message, error)
	StreamReply(ctx context.Context, history []chat.Turn, userText string) (*schema.StreamReader[*schema.Message], error)
	StreamingEnabled() bool
}

// Exchange is one question and the reply it produced.
type Exchange struct {
	User      chat.Turn `json:"user"`
	Assistant chat.Turn `json:"assistant"`
	InScope   bool      `json:"inScope"`
}

// Dispatcher evaluates the topic gate and dispatches accordingly.
type Dispatcher struct {
	gate     *topic.Gate
	sessions Sessions
	model    Model
	log      *zap.Logger
}

// NewDispatcher wires the gate, the session store and an optional model. With
// a nil model every in-scope question fails with ErrModelUnavailable.
func NewDispatcher(gate *topic.Gate, sessions Sessions, model Model, log *zap.Logger) *Dispatcher {
	if gate == nil {
		gate = topic.NewGate(topic.DefaultKeywords...)
	}
	return &Dispatcher{
		gate:     gate,
		sessions: sessions,
		model:    model,
		log:      logger.OrNop(log).Named("dispatcher"),
	}
}

// Gate exposes the topic gate in use.
func (d *Dispatcher) Gate() *topic.Gate {
	return d.gate
}

// Respond answers input and appends both turns to the session. When the model
// call fails nothing is appended and the error is returned to the caller.
func (d *Dispatcher) Respond(ctx context.Context, sessionID, input string) (Exchange, error) {
	return d.respond(ctx, sessionID, input, nil)
}

// Stream behaves like Respond but reports reply fragments to onDelta as they
// arrive. Out-of-scope replies are reported as a single fragment.
func (d *Dispatcher) Stream(ctx context.Context, sessionID, input string, onDelta func(string)) (Exchange, error) {
	if onDelta == nil {
		onDelta = func(string) {}
	}
	return d.respond(ctx, sessionID, input, onDelta)
}

func (d *Dispatcher) respond(ctx context.Context, sessionID, input string, onDelta func(string)) (Exchange, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return Exchange{}, ErrEmptyMessage
	}

	history, err := d.sessions.Transcript(ctx, sessionID)
	if err != nil {
		return Exchange{}, err
	}

	userTurn := chat.NewTurn(sessionID, chat.User, text)

	keyword, inScope := d.gate.Match(text)
	var reply string
	if inScope {
		d.log.Debug("question in scope", zap.String("session", sessionID), zap.String("keyword", keyword))
		reply, err = d.ask(ctx, history, text, onDelta)
		if err == nil && strings.TrimSpace(reply) == "" {
			err = ErrEmptyReply
		}
		if err != nil {
			d.log.Warn("model call failed", zap.String("session", sessionID), zap.Error(err))
			return Exchange{}, err
		}
	} else {
		d.log.Debug("question out of scope", zap.String("session", sessionID))
		reply = topic.OutOfScopeReply
		userTurn.OutOfScope = true
		if onDelta != nil {
			onDelta(reply)
		}
	}

	assistantTurn := chat.NewTurn(sessionID, chat.Assistant, reply)
	assistantTurn.OutOfScope = !inScope

	if err := d.sessions.AppendTurns(ctx, sessionID, userTurn, assistantTurn); err != nil {
		return Exchange{}, err
	}

	return Exchange{User: userTurn, Assistant: assistantTurn, InScope: inScope}, nil
}

func (d *Dispatcher) ask(ctx context.Context, history []chat.Turn, text string, onDelta func(string)) (string, error) {
	if d.model == nil {
		return "", ErrModelUnavailable
	}

	if onDelta == nil || !d.model.StreamingEnabled() {
		msg, err := d.model.GenerateReply(ctx, history, text)
		if err != nil {
			return "", err
		}
		if onDelta != nil {
			onDelta(msg.Content)
		}
		return msg.Content, nil
	}

	stream, err := d.model.StreamReply(ctx, history, text)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil {
			continue
		}
		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			onDelta(chunk.Content)
		}
	}

	if len(chunks) == 0 {
		return "", ErrEmptyReply
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}
