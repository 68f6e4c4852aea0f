package models

import "time"

const (
	GameLobby      = "lobby"
	GameInProgress = "in progress"
	GameOver       = "over"
)

// GameSession is the durable snapshot of a session.
type GameSession struct {
	tableName struct{} `pg:"game_sessions"`

	Id                 string         `pg:",pk" json:"id"`
	Name               string         `json:"name"`
	Status             string         `json:"status"`
	TurnOrder          []string       `pg:",array" json:"turnOrder"`
	CurrentPlayerIndex int            `pg:",use_zero" json:"currentPlayerIndex"`
	Winner             string         `json:"winner,omitempty"`
	History            []HistoryEntry `json:"history"`
	Loans              []Loan         `json:"loans"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// HistoryEntry is one applied action. Entries are only ever appended.
type HistoryEntry struct {
	Seq      int                    `json:"seq"`
	Kind     string                 `json:"kind"`
	PlayerId string                 `json:"playerId,omitempty"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
	At       time.Time              `json:"at"`
}

type GameCreateDto struct {
	Name string `json:"name"`
}

type VerifyGameDto struct {
	Code string `query:"code"`
}

type GameSummary struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Players int    `json:"players"`
}
