package models

// SessionSnapshot is an immutable view of a session taken after a commit.
type SessionSnapshot struct {
	Id              string       `json:"id"`
	Name            string       `json:"name"`
	Status          string       `json:"status"`
	CurrentPlayerId string       `json:"currentPlayerId,omitempty"`
	Players         []PlayerDto  `json:"players"`
	Pending         []PendingDto `json:"pending,omitempty"`
	Loans           []Loan       `json:"loans,omitempty"`
	Winner          string       `json:"winner,omitempty"`
	Seq             int          `json:"seq"`
}

type PendingDto struct {
	PlayerId string `json:"playerId"`
	Kind     string `json:"kind"`
	Options  []int  `json:"options,omitempty"`
	Target   string `json:"target,omitempty"`
}
