package tui

import (
	"github.com/DachengChen/sqlchat/ai"
	"github.com/DachengChen/sqlchat/chain"
	"github.com/DachengChen/sqlchat/config"
	"github.com/DachengChen/sqlchat/db"
)

// Messages exchanged between views and the App.

// ConnectedMsg is sent when the database is open and the model provider
// is ready.
type ConnectedMsg struct {
	DB       db.Database
	Provider ai.Provider
	Cfg      config.Config
	Conn     config.Connection
}

// ConnectErrorMsg is sent when connecting fails.
type ConnectErrorMsg struct {
	Err error
}

// TurnMsg carries the outcome of one chat turn back to the chat view.
// SessionID and Seq tie it to the turn that started it; replies for an
// abandoned session or a cancelled turn are dropped.
type TurnMsg struct {
	SessionID string
	Seq       int
	Turn      chain.Turn
	Err       error
}

// QueryResultMsg carries the result of a query run with ":run".
type QueryResultMsg struct {
	SessionID string
	Seq       int
	Query     string
	Result    *db.QueryResult
	Err       error
}

// CommandMsg asks the App to run a ":" command.
type CommandMsg struct {
	Input string
}
