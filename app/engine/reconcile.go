package engine

import (
	"context"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/DedS3t/tycoon-backend/platform/database"
	"github.com/sirupsen/logrus"
)

// Disconnect handles a dropped connection. In the lobby the player simply
// leaves. Once the game runs their row is written in full and they stay in the
// rotation so they can come back under the same name.
func (s *Session) Disconnect(ctx context.Context, playerId string) error {
	s.lock()
	defer s.unlock()

	p, err := s.mustPlayer(playerId)
	if err != nil {
		return err
	}
	if s.status == models.GameLobby {
		return s.leave(ctx, p)
	}
	if !p.Connected {
		return nil
	}
	err = s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
		p.Connected = false
		s.record("disconnect", p.Id, nil)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithField("player", p.Id).Info("player disconnected, state kept")
	return nil
}

// Quit removes the player for good. If only one player is left in a running
// game, they win.
func (s *Session) Quit(ctx context.Context, playerId string) error {
	s.lock()
	defer s.unlock()

	p, err := s.mustPlayer(playerId)
	if err != nil {
		return err
	}
	return s.leave(ctx, p)
}

func (s *Session) leave(ctx context.Context, p *models.Player) error {
	_, idx := s.player(p.Id)
	running := s.status == models.GameInProgress
	wasCurrent := running && idx == s.current

	err := s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
		released := p.Properties
		p.Left, p.Connected, p.Ready = true, false, false
		p.Properties = nil

		rest := make([]*models.Player, 0, len(s.players)-1)
		for _, o := range s.players {
			if o != p {
				rest = append(rest, o)
			}
		}
		s.players = rest
		if idx < s.current {
			s.current--
		}
		if s.current >= len(s.players) {
			s.current = 0
		}
		for id, l := range s.loans {
			if l.BorrowerId == p.Id || l.LenderId == p.Id {
				delete(s.loans, id)
			}
		}
		s.record("quit", p.Id, map[string]interface{}{"released": released})

		switch {
		case s.status == models.GameLobby:
			s.lobbyUpdate()
		case running && len(s.players) == 1:
			winner := s.players[0]
			s.status = models.GameOver
			s.winner = winner.Id
			s.record("gameOver", winner.Id, nil)
			s.broadcast(EventGameOver, GameOver{WinnerId: winner.Id, WinnerName: winner.Name})
		case running && len(s.players) == 0:
			s.status = models.GameOver
			s.record("gameOver", "", nil)
			s.broadcast(EventGameOver, GameOver{})
		case wasCurrent:
			next := s.players[s.current]
			s.broadcast(EventTurnEnded, TurnEnded{PlayerId: p.Id, NextPlayerId: next.Id})
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"player": p.Id, "remaining": len(s.players)}).Info("player left")
	if wasCurrent {
		s.move = nil
		s.turn = turnFlags{}
	}
	s.resolved(p.Id)
	s.leaveConflict(ctx, p.Id)
	for _, o := range s.offers {
		if o.FromId == p.Id || o.ToId == p.Id {
			s.dropOffer(o, CodeInvalidTrade, ReasonPlayerLeft)
		}
	}
	if s.status == models.GameOver {
		s.stopTimers()
		s.pending = make(map[string]*Pending)
		s.offers = make(map[string]*offer)
		s.conflict = nil
		s.move = nil
	}
	return nil
}

// leaveConflict drops a departed player from the running duel. If the lander
// left the duel is called off; if the last missing hand belonged to the
// departed player the duel is decided with the hands that are in.
func (s *Session) leaveConflict(ctx context.Context, playerId string) {
	c := s.conflict
	if c == nil {
		return
	}
	if c.lander == playerId {
		for _, id := range c.contenders {
			s.resolved(id)
		}
		s.conflict = nil
		return
	}

	var contenders []string
	for _, id := range c.contenders {
		if id != playerId {
			contenders = append(contenders, id)
		}
	}
	c.contenders = contenders
	delete(c.choices, playerId)

	if c.decided {
		drawing := len(c.ties) > 0 && c.ties[0] == playerId
		var ties []string
		for _, id := range c.ties {
			if id != playerId {
				ties = append(ties, id)
			}
		}
		c.ties = ties
		if drawing {
			s.resolved(c.lander)
			s.nextTie()
		}
		return
	}

	if len(c.contenders) == 0 {
		s.resolved(c.lander)
		s.conflict = nil
		return
	}
	if !c.complete() {
		return
	}
	ties, err := s.evaluate(ctx)
	if err != nil {
		s.report(c.lander, err)
		for _, id := range append([]string{c.lander}, c.contenders...) {
			s.resolved(id)
		}
		s.conflict = nil
		return
	}
	c.decided = true
	c.ties = ties
	s.nextTie()
}
