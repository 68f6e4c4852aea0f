package queries

import (
	"sort"
	"strconv"

	"github.com/DedS3t/tycoon-backend/app/models"
)

// Reader is the read side of the snapshot cache.
type Reader interface {
	Snapshot(gameId string) ([]byte, error)
	CurrentPlayer(gameId string) (string, error)
	Balances(gameId string) (map[string]map[string]string, error)
}

type Standing struct {
	PlayerId string `json:"playerId"`
	Piece    string `json:"piece,omitempty"`
	Money    int    `json:"money"`
	Loan     int    `json:"loan"`
	TileId   int    `json:"tileId"`
	Worth    int    `json:"worth"`
}

func IsPlayerTurn(r Reader, game_id string, player_id string) bool {
	val, err := r.CurrentPlayer(game_id)
	if err != nil {
		return false
	}
	return val != "" && val == player_id
}

// Standings ranks the players of a game by money minus bank debt, read from
// the per-player hashes.
func Standings(r Reader, game_id string) ([]Standing, error) {
	balances, err := r.Balances(game_id)
	if err != nil {
		return nil, err
	}
	out := make([]Standing, 0, len(balances))
	for id, fields := range balances {
		money, _ := strconv.Atoi(fields["bal"])
		loan, _ := strconv.Atoi(fields["loan"])
		pos, _ := strconv.Atoi(fields["pos"])
		out = append(out, Standing{
			PlayerId: id,
			Piece:    fields["piece"],
			Money:    money,
			Loan:     loan,
			TileId:   pos,
		})
	}
	return rank(out), nil
}

// SnapshotStandings is Standings computed from a live snapshot.
func SnapshotStandings(snap models.SessionSnapshot) []Standing {
	out := make([]Standing, 0, len(snap.Players))
	for _, p := range snap.Players {
		out = append(out, Standing{
			PlayerId: p.Id,
			Piece:    p.Piece,
			Money:    p.Money,
			Loan:     p.Loan,
			TileId:   p.TileId,
		})
	}
	return rank(out)
}

func rank(out []Standing) []Standing {
	for i := range out {
		out[i].Worth = out[i].Money - out[i].Loan
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Worth != out[j].Worth {
			return out[i].Worth > out[j].Worth
		}
		return out[i].PlayerId < out[j].PlayerId
	})
	return out
}
