package transcript

import (
	"context"

	"github.com/google/uuid"

	"github.com/DachengChen/sqlchat/chain"
)

// Session records the turns of one conversation.
type Session struct {
	store      *Store
	ID         string
	Connection string
	Provider   string
}

var _ chain.Recorder = (*Session)(nil)

// NewSession starts a session with a fresh id.
func (s *Store) NewSession(connection, provider string) *Session {
	return &Session{
		store:      s,
		ID:         uuid.NewString(),
		Connection: connection,
		Provider:   provider,
	}
}

// RecordTurn stores turn and the error that ended it, if any.
func (s *Session) RecordTurn(ctx context.Context, turn chain.Turn, err error) error {
	e := Entry{
		SessionID:  s.ID,
		Connection: s.Connection,
		Provider:   s.Provider,
		Question:   turn.Question,
		Query:      turn.Query,
		Response:   turn.Response,
		Answer:     turn.Answer,
		CreatedAt:  turn.Started,
		Duration:   turn.Elapsed,
	}
	if err != nil {
		e.Error = err.Error()
	}
	// The turn's own context may already be cancelled.
	_, rerr := s.store.Record(context.WithoutCancel(ctx), e)
	return rerr
}
