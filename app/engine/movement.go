package engine

import (
	"context"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/DedS3t/tycoon-backend/platform/database"
	"github.com/sirupsen/logrus"
)

// moveState is the continuation of a roll: where stepping resumes after a
// branch decision and what has already been paid during this roll.
type moveState struct {
	playerId  string
	total     int
	remaining int
	startPaid bool
	landed    bool
	stomped   map[string]bool
}

func newMove(playerId string, total int) *moveState {
	return &moveState{
		playerId:  playerId,
		total:     total,
		remaining: total,
		stomped:   make(map[string]bool),
	}
}

// NextTile picks the exit from tileId for a roll of total. When the choice is
// ambiguous it returns the candidate destinations instead.
func NextTile(edges []models.Edge, total int) (int, []int, error) {
	if len(edges) == 0 {
		return 0, nil, errStuck
	}
	for _, e := range edges {
		if e.Roll == models.RollAny {
			return e.To, nil, nil
		}
	}
	var below, above []models.Edge
	for _, e := range edges {
		switch e.Roll {
		case models.RollBelow7:
			below = append(below, e)
		case models.RollAbove7:
			above = append(above, e)
		}
	}
	switch {
	case total < 7 && len(below) > 0:
		return below[0].To, nil, nil
	case total > 7 && len(above) > 0:
		return above[0].To, nil, nil
	case total == 7 && len(below)+len(above) > 1:
		var options []int
		for _, e := range edges {
			if e.Roll == models.RollBelow7 || e.Roll == models.RollAbove7 {
				options = append(options, e.To)
			}
		}
		return 0, options, nil
	}
	return edges[0].To, nil, nil
}

// walk steps p until the roll is used up or a branch needs a decision. It only
// changes p and the history, so callers run it inside apply.
func (s *Session) walk(p *models.Player, m *moveState, forced int) (*Pending, error) {
	if forced != 0 {
		s.step(p, m, forced)
	}
	for m.remaining > 0 {
		dest, options, err := NextTile(s.graph.EdgesFrom(p.TileId, p.PrevTile), m.total)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"player": p.Id,
				"tile":   p.TileId,
				"from":   p.PrevTile,
			}).Error("movement stuck: no outgoing edge")
			return nil, fail(CodeStuck, "no way forward from tile %d", p.TileId)
		}
		if options != nil {
			return &Pending{Kind: PendingBranch, PlayerId: p.Id, Options: options}, nil
		}
		s.step(p, m, dest)
	}
	return nil, nil
}

func (s *Session) step(p *models.Player, m *moveState, dest int) {
	from := p.TileId
	p.PrevTile, p.TileId = from, dest
	m.remaining--
	s.record("move", p.Id, map[string]interface{}{"from": from, "to": dest})
	s.broadcast(EventPlayerMoved, PlayerMoved{PlayerId: p.Id, From: from, To: dest, Remaining: m.remaining})

	if m.startPaid || !s.passedStart(from, dest) {
		return
	}
	m.startPaid = true
	bonus := StartBonus
	if p.Loan > 0 {
		bonus = StartBonusIndebted
	}
	p.Money += bonus
	s.record("startBonus", p.Id, map[string]interface{}{"amount": bonus})
	s.broadcast(EventStartBonus, MoneyEvent{PlayerId: p.Id, Amount: bonus})
}

func (s *Session) passedStart(from, to int) bool {
	start := s.graph.StartTile()
	return to == start || (from == s.graph.LastTile() && to > start)
}

func (s *Session) branchPrompt(p *models.Player, d *Pending) {
	opts := make([]BranchOption, 0, len(d.Options))
	for i, id := range d.Options {
		tile, _ := s.graph.GetById(id)
		opts = append(opts, BranchOption{Index: i, TileId: id, Name: tile.Name})
	}
	s.sendTo(p.Id, EventBranchChoices, BranchChoices{
		PlayerId:  p.Id,
		TileId:    p.TileId,
		Remaining: s.move.remaining,
		Options:   opts,
	})
}

// BranchChoice resumes a roll halted at a branch point.
func (s *Session) BranchChoice(ctx context.Context, playerId string, index int) error {
	s.lock()
	defer s.unlock()
	return s.chooseBranch(ctx, playerId, index)
}

func (s *Session) chooseBranch(ctx context.Context, playerId string, index int) error {
	d, ok := s.pending[playerId]
	if !ok || d.Kind != PendingBranch || s.move == nil || s.move.playerId != playerId {
		return fail(CodeNoPendingDecision, "no branch to choose")
	}
	if index < 0 || index >= len(d.Options) {
		return fail(CodeInvalidChoice, "branch index %d out of range", index)
	}
	p, err := s.mustPlayer(playerId)
	if err != nil {
		return err
	}

	m := *s.move
	var next *Pending
	err = s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
		s.record("branchChoice", p.Id, map[string]interface{}{"index": index, "to": d.Options[index]})
		var err error
		next, err = s.walk(p, &m, d.Options[index])
		return err
	})
	if err != nil {
		return err
	}
	s.resolved(playerId)
	s.move = &m
	if next != nil {
		s.await(next)
		s.branchPrompt(p, next)
		return nil
	}
	s.land(ctx, p)
	return nil
}

// land runs the effects of stopping on the current tile and then marks the
// movement settled.
func (s *Session) land(ctx context.Context, p *models.Player) {
	s.landingEffects(ctx, p, s.move)
	s.move.landed = true
	if err := s.settle(ctx, p); err != nil {
		s.report(p.Id, err)
	}
}

// landingEffects applies rent, stomps and tile rules. Each is its own atomic
// event; a failed one is reported and does not stop the others.
func (s *Session) landingEffects(ctx context.Context, p *models.Player, m *moveState) {
	tile, err := s.graph.GetById(p.TileId)
	if err != nil {
		s.log.WithField("tile", p.TileId).Error("player on unknown tile")
		return
	}
	if tile.IsProperty() {
		if err := s.chargeRent(ctx, p, tile); err != nil {
			s.report(p.Id, err)
		}
	}
	if !tile.IsSpecial() {
		if err := s.stomp(ctx, p, tile, m); err != nil {
			s.report(p.Id, err)
		}
	}
	if tile.Action == models.ActionConflict {
		if err := s.startConflict(ctx, p); err != nil {
			s.report(p.Id, err)
		}
	}
}

func (s *Session) settle(ctx context.Context, p *models.Player) error {
	return s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
		p.HasMoved = true
		s.record("movementDone", p.Id, map[string]interface{}{"tile": p.TileId})
		s.broadcast(EventMovementDone, MovementDone{PlayerId: p.Id, TileId: p.TileId})
		return nil
	})
}

// stomp charges every other occupant of the tile that does not own it, once
// per occupant per roll.
func (s *Session) stomp(ctx context.Context, p *models.Player, tile models.Tile, m *moveState) error {
	var payers []*models.Player
	for _, o := range s.players {
		if o == p || o.TileId != p.TileId || m.stomped[o.Id] {
			continue
		}
		if tile.IsProperty() && o.Owns(tile.Id) {
			continue
		}
		payers = append(payers, o)
	}
	if len(payers) == 0 {
		return nil
	}
	err := s.apply(ctx, append([]*models.Player{p}, payers...), func(tx database.Tx) error {
		for _, o := range payers {
			o.Money -= StompAmount
			o.Settle()
			p.Money += StompAmount
			s.record("stomp", p.Id, map[string]interface{}{"payer": o.Id, "amount": StompAmount})
			s.broadcast(EventStomped, MoneyEvent{PlayerId: p.Id, OtherId: o.Id, TileId: tile.Id, Amount: StompAmount})
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, o := range payers {
		m.stomped[o.Id] = true
	}
	return nil
}

func (s *Session) ownerOf(tileId int) *models.Player {
	for _, p := range s.players {
		if p.Owns(tileId) {
			return p
		}
	}
	return nil
}

func (s *Session) chargeRent(ctx context.Context, p *models.Player, tile models.Tile) error {
	owner := s.ownerOf(tile.Id)
	if owner == nil {
		return nil
	}
	mult := RentMultiplier(s.graph, owner.Properties, tile.Division)
	amount := tile.Rent * mult
	if owner == p {
		return s.apply(ctx, []*models.Player{p}, func(tx database.Tx) error {
			p.Money += amount
			s.record("rentBonus", p.Id, map[string]interface{}{"tile": tile.Id, "amount": amount})
			s.broadcast(EventRentBonus, MoneyEvent{PlayerId: p.Id, TileId: tile.Id, Amount: amount, Multiplier: mult})
			return nil
		})
	}
	return s.apply(ctx, []*models.Player{p, owner}, func(tx database.Tx) error {
		p.Money -= amount
		p.Settle()
		owner.Money += amount
		s.record("rent", p.Id, map[string]interface{}{"tile": tile.Id, "owner": owner.Id, "amount": amount})
		s.broadcast(EventRentPaid, MoneyEvent{PlayerId: p.Id, OtherId: owner.Id, TileId: tile.Id, Amount: amount, Multiplier: mult})
		return nil
	})
}
