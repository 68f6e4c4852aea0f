package engine

import (
	"context"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/DedS3t/tycoon-backend/platform/database"
)

// Phase is where the current player is within their turn.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseMoving         Phase = "moving"
	PhaseAwaitingAction Phase = "awaitingAction"
	PhaseMoved          Phase = "moved"
)

// turnFlags are reset whenever the turn passes.
type turnFlags struct {
	casinoPlayed bool
	teleported   bool
}

// Phase reports the state of the current player's turn.
func (s *Session) Phase() Phase {
	s.lock()
	defer s.unlock()
	p := s.currentPlayer()
	switch {
	case p == nil || !p.HasRolled:
		return PhaseIdle
	case s.move != nil && !s.move.landed:
		return PhaseMoving
	case s.conflict != nil || len(s.pending) > 0:
		return PhaseAwaitingAction
	case p.HasMoved:
		return PhaseMoved
	}
	return PhaseMoving
}

// CurrentPlayerId returns whose turn it is, or "" outside a running game.
func (s *Session) CurrentPlayerId() string {
	s.lock()
	defer s.unlock()
	if s.status != models.GameInProgress {
		return ""
	}
	return s.currentPlayer().Id
}

func (s *Session) requireTurn(playerId string) (*models.Player, error) {
	if s.status != models.GameInProgress {
		return nil, fail(CodeGameNotStarted, "game is not running")
	}
	p, err := s.mustPlayer(playerId)
	if err != nil {
		return nil, err
	}
	if s.currentPlayer() != p {
		return nil, fail(CodeNotYourTurn, "it is not your turn")
	}
	return p, nil
}

// RollDice rolls for the current player and walks the token as far as it can
// go without a decision.
func (s *Session) RollDice(ctx context.Context, playerId string) error {
	s.lock()
	defer s.unlock()

	p, err := s.requireTurn(playerId)
	if err != nil {
		return err
	}
	if p.HasRolled {
		return fail(CodeAlreadyRolled, "you have already rolled the dice")
	}
	if _, ok := s.pending[playerId]; ok {
		return fail(CodePendingDecision, "answer the pending decision first")
	}

	d1, d2 := s.dice()
	m := newMove(p.Id, d1+d2)
	var branch *Pending
	err = s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
		p.HasRolled = true
		s.record("roll", p.Id, map[string]interface{}{"dice": []int{d1, d2}, "total": m.total})
		s.broadcast(EventDiceResult, DiceResult{PlayerId: p.Id, Dice: [2]int{d1, d2}, Total: m.total})
		var err error
		branch, err = s.walk(p, m, 0)
		return err
	})
	if err != nil {
		return err
	}
	s.move = m
	if branch != nil {
		s.await(branch)
		s.branchPrompt(p, branch)
		return nil
	}
	s.land(ctx, p)
	return nil
}

// EndTurn passes the turn once movement and every triggered sub-game have
// settled.
func (s *Session) EndTurn(ctx context.Context, playerId string) error {
	s.lock()
	defer s.unlock()

	p, err := s.requireTurn(playerId)
	if err != nil {
		return err
	}
	if !p.HasRolled {
		return fail(CodeNotMoved, "you must roll the dice first")
	}
	if _, ok := s.pending[playerId]; ok {
		return fail(CodePendingDecision, "answer the pending decision first")
	}
	if s.conflict != nil {
		return fail(CodeConflictPending, "the duel has not finished")
	}
	if !p.HasMoved {
		// landing settled in memory but its commit failed; try again
		if s.move == nil || !s.move.landed {
			return fail(CodeNotMoved, "your movement has not finished")
		}
		if err := s.settle(ctx, p); err != nil {
			return err
		}
	}

	next := (s.current + 1) % len(s.players)
	err = s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
		p.HasRolled = false
		p.HasMoved = false
		s.current = next
		nextId := s.players[next].Id
		s.record("endTurn", p.Id, map[string]interface{}{"next": nextId})
		s.broadcast(EventTurnEnded, TurnEnded{PlayerId: p.Id, NextPlayerId: nextId})
		return nil
	})
	if err != nil {
		return err
	}
	s.move = nil
	s.turn = turnFlags{}
	return nil
}

// Teleport moves the current player from the teleport tile to any tile once
// per turn. Landing effects apply; the start bonus does not.
func (s *Session) Teleport(ctx context.Context, playerId string, target int) error {
	s.lock()
	defer s.unlock()

	p, err := s.requireTurn(playerId)
	if err != nil {
		return err
	}
	if !p.HasMoved {
		return fail(CodeNotMoved, "finish moving first")
	}
	here, _ := s.graph.GetById(p.TileId)
	if here.Action != models.ActionTeleport {
		return fail(CodeNotOnTile, "you are not on a teleport tile")
	}
	if s.turn.teleported {
		return fail(CodeAlreadyPlayed, "you already teleported this turn")
	}
	if s.conflict != nil {
		return fail(CodeConflictPending, "the duel has not finished")
	}
	if _, err := s.graph.GetById(target); err != nil || target == p.TileId {
		return fail(CodeInvalidChoice, "cannot teleport to tile %d", target)
	}

	err = s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
		from := p.TileId
		p.PrevTile, p.TileId = 0, target
		s.record("teleport", p.Id, map[string]interface{}{"from": from, "to": target})
		s.broadcast(EventPlayerMoved, PlayerMoved{PlayerId: p.Id, From: from, To: target, Teleport: true})
		return nil
	})
	if err != nil {
		return err
	}
	s.turn.teleported = true
	if s.move == nil {
		s.move = newMove(p.Id, 0)
		s.move.landed = true
	}
	s.landingEffects(ctx, p, s.move)
	return nil
}
