package socket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/DedS3t/tycoon-backend/app/engine"
	"github.com/DedS3t/tycoon-backend/app/models"
	jwt "github.com/form3tech-oss/jwt-go"
)

// connState is kept on every socket.io connection once it joined a game.
type connState struct {
	GameId   string
	PlayerId string
}

type handler func(ctx context.Context, s *engine.Session, playerId string, body []byte) error

var errBadRequest = &engine.Failure{Code: CodeBadRequest, Message: "malformed payload"}

func decode(body []byte, v interface{}) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errBadRequest
	}
	return nil
}

var handlers = map[string]handler{
	EventSelectPiece: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req pieceReq
		if err := decode(body, &req); err != nil {
			return err
		}
		return s.SelectPiece(ctx, pid, req.Piece)
	},
	EventPlayerReady: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		req := readyReq{Ready: true}
		if err := decode(body, &req); err != nil {
			return err
		}
		return s.SetReady(ctx, pid, req.Ready)
	},
	EventRollDice: func(ctx context.Context, s *engine.Session, pid string, _ []byte) error {
		return s.RollDice(ctx, pid)
	},
	EventBranchChoice: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req indexReq
		if err := decode(body, &req); err != nil {
			return err
		}
		return s.BranchChoice(ctx, pid, req.Index)
	},
	EventEndTurn: func(ctx context.Context, s *engine.Session, pid string, _ []byte) error {
		return s.EndTurn(ctx, pid)
	},
	EventBuyProperty: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req tileReq
		if err := decode(body, &req); err != nil {
			return err
		}
		return s.BuyProperty(ctx, pid, req.TileId)
	},
	EventUpdateProperty: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req tileReq
		if err := decode(body, &req); err != nil {
			return err
		}
		return s.UpdateProperty(ctx, pid, req.TileId, req.Action)
	},
	EventCasinoRoll: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req casinoReq
		if err := decode(body, &req); err != nil {
			return err
		}
		return s.CasinoRoll(ctx, pid, req.Bet, req.Stake)
	},
	EventBorrowMoney: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req amountReq
		if err := decode(body, &req); err != nil {
			return err
		}
		return s.BorrowMoney(ctx, pid, req.Amount)
	},
	EventPayoffLoan: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req amountReq
		if err := decode(body, &req); err != nil {
			return err
		}
		return s.PayoffLoan(ctx, pid, req.Amount)
	},
	EventTeleport: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req tileReq
		if err := decode(body, &req); err != nil {
			return err
		}
		return s.Teleport(ctx, pid, req.TileId)
	},
	EventRPSChoice: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req choiceReq
		if err := decode(body, &req); err != nil {
			return err
		}
		return s.SubmitRPS(ctx, pid, req.Choice)
	},
	EventRPSTieAmount: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req tieAmountReq
		if err := decode(body, &req); err != nil {
			return err
		}
		return s.TieAmount(ctx, pid, req.TiedPlayerId, req.Index)
	},
	EventTradeRequest: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req models.TradeOffer
		if err := decode(body, &req); err != nil {
			return err
		}
		_, err := s.ProposeTrade(ctx, pid, req)
		return err
	},
	EventTradeResponse: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req responseReq
		if err := decode(body, &req); err != nil {
			return err
		}
		return s.RespondTrade(ctx, pid, req.OfferId, req.Accept)
	},
	EventLoanRequest: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req loanReq
		if err := decode(body, &req); err != nil {
			return err
		}
		_, err := s.RequestLoan(ctx, pid, req.LenderId, req.Amount, req.ReturnAmount)
		return err
	},
	EventLoanResponse: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req responseReq
		if err := decode(body, &req); err != nil {
			return err
		}
		return s.RespondLoan(ctx, pid, req.LoanId, req.Accept)
	},
	EventLoanRepay: func(ctx context.Context, s *engine.Session, pid string, body []byte) error {
		var req responseReq
		if err := decode(body, &req); err != nil {
			return err
		}
		return s.RepayLoan(ctx, pid, req.LoanId)
	},
	EventQuitGame: func(ctx context.Context, s *engine.Session, pid string, _ []byte) error {
		return s.Quit(ctx, pid)
	},
}

// dispatch runs an inbound game event for the player bound to st.
func (t *Transport) dispatch(ctx context.Context, st connState, event string, body []byte) error {
	h, ok := handlers[event]
	if !ok {
		return &engine.Failure{Code: CodeBadRequest, Message: "unknown event " + event}
	}
	if st.PlayerId == "" {
		return &engine.Failure{Code: CodeNotJoined, Message: "join a game first"}
	}
	s, ok := t.manager.Get(st.GameId)
	if !ok {
		return &engine.Failure{Code: CodeGameNotFound, Message: "game no longer exists"}
	}
	return h(ctx, s, st.PlayerId, body)
}

// join adds a player to the lobby, or re-attaches a disconnected one, and
// issues their token.
func (t *Transport) join(ctx context.Context, body []byte) (connState, joinedLobby, error) {
	var req joinLobbyReq
	if err := decode(body, &req); err != nil {
		return connState{}, joinedLobby{}, err
	}
	s, ok := t.manager.Get(req.GameId)
	if !ok {
		return connState{}, joinedLobby{}, &engine.Failure{Code: CodeGameNotFound, Message: "invalid game"}
	}
	p, err := s.Join(ctx, req.Name)
	if err != nil {
		return connState{}, joinedLobby{}, err
	}
	token, err := IssueToken(t.secret, s.Id(), p.Id)
	if err != nil {
		return connState{}, joinedLobby{}, err
	}
	st := connState{GameId: s.Id(), PlayerId: p.Id}
	return st, joinedLobby{Player: p, Token: token, State: s.Snapshot()}, nil
}

// IssueToken signs the player token handed out on joinLobby.
func IssueToken(secret []byte, gameId, playerId string) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["player_id"] = playerId
	claims["game_id"] = gameId
	return token.SignedString(secret)
}

// failure turns err into the error-message payload, or false when the engine
// already told the player.
func failure(err error) (engine.ErrorMessage, bool) {
	var f *engine.Failure
	if errors.As(err, &f) {
		if f.Reported {
			return engine.ErrorMessage{}, false
		}
		return engine.ErrorMessage{Code: f.Code, Message: f.Message}, true
	}
	return engine.ErrorMessage{Code: engine.CodeCommitFailed, Message: "the action could not be saved"}, true
}
