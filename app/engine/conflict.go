package engine

import (
	"context"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/DedS3t/tycoon-backend/platform/database"
	"github.com/sirupsen/logrus"
)

// Choice is a rock paper scissors hand.
type Choice string

const (
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

func (c Choice) valid() bool {
	return c == Rock || c == Paper || c == Scissors
}

func (c Choice) beats(o Choice) bool {
	return (c == Rock && o == Scissors) || (c == Paper && o == Rock) || (c == Scissors && o == Paper)
}

// Outcomes of a contender against the lander.
const (
	OutcomeWon  = "won"
	OutcomeLost = "lost"
	OutcomeTie  = "tie"
)

// conflict is a duel started by landing on a conflict tile. It lives until
// every choice is in and every tie has been drawn.
type conflict struct {
	lander     string
	tile       int
	contenders []string
	choices    map[string]Choice
	decided    bool
	ties       []string
	options    []int
}

func (c *conflict) complete() bool {
	if _, ok := c.choices[c.lander]; !ok {
		return false
	}
	for _, id := range c.contenders {
		if _, ok := c.choices[id]; !ok {
			return false
		}
	}
	return true
}

// Contenders returns the players nearest to tileId, ignoring exclude. Players
// on the tile itself are at distance zero; otherwise the board is searched
// outward in both directions up to MaxSearchDepth hops.
func Contenders(g neighbourer, players []*models.Player, tileId int, exclude string) []string {
	occupants := make(map[int][]string)
	for _, p := range players {
		if p.Id != exclude {
			occupants[p.TileId] = append(occupants[p.TileId], p.Id)
		}
	}
	if here := occupants[tileId]; len(here) > 0 {
		return here
	}

	type path struct {
		tile int
		tail []int
	}
	best := map[int]int{tileId: 0}
	frontier := []path{{tile: tileId, tail: []int{tileId}}}
	for depth := 1; depth <= MaxSearchDepth && len(frontier) > 0; depth++ {
		var next []path
		var found []string
		for _, cur := range frontier {
			for _, n := range g.Neighbours(cur.tile) {
				if inTail(cur.tail, n) {
					continue
				}
				if d, seen := best[n]; seen && d < depth {
					continue
				}
				if _, seen := best[n]; !seen {
					best[n] = depth
					found = append(found, occupants[n]...)
				}
				tail := append(append([]int(nil), cur.tail...), n)
				if len(tail) > LoopWindow {
					tail = tail[len(tail)-LoopWindow:]
				}
				next = append(next, path{tile: n, tail: tail})
			}
		}
		if len(found) > 0 {
			return found
		}
		frontier = next
	}
	return nil
}

type neighbourer interface {
	Neighbours(id int) []int
}

func inTail(tail []int, id int) bool {
	for _, t := range tail {
		if t == id {
			return true
		}
	}
	return false
}

func (s *Session) startConflict(ctx context.Context, p *models.Player) error {
	if s.conflict != nil {
		return fail(CodeConflictPending, "a duel is already running")
	}
	contenders := Contenders(s.graph, s.players, p.TileId, p.Id)
	if len(contenders) == 0 {
		s.log.WithField("player", p.Id).Info("conflict tile with nobody in range")
		return nil
	}
	c := &conflict{
		lander:     p.Id,
		tile:       p.TileId,
		contenders: append([]string(nil), contenders...),
		choices:    make(map[string]Choice),
	}
	err := s.apply(ctx, nil, func(tx database.Tx) error {
		s.record("conflictStart", p.Id, map[string]interface{}{"tile": p.TileId, "contenders": contenders})
		s.broadcast(EventRPSStart, RPSStart{LanderId: p.Id, TileId: p.TileId, Contenders: contenders})
		return nil
	})
	if err != nil {
		return err
	}
	s.conflict = c
	s.log.WithFields(logrus.Fields{"player": p.Id, "contenders": contenders}).Info("conflict started")
	s.await(&Pending{Kind: PendingRPSChoice, PlayerId: p.Id})
	for _, id := range contenders {
		s.await(&Pending{Kind: PendingRPSChoice, PlayerId: id})
	}
	return nil
}

// SubmitRPS records a hand for the running duel. The duel is decided once the
// lander and every contender have chosen.
func (s *Session) SubmitRPS(ctx context.Context, playerId, choice string) error {
	s.lock()
	defer s.unlock()
	return s.chooseRPS(ctx, playerId, Choice(choice))
}

func (s *Session) chooseRPS(ctx context.Context, playerId string, choice Choice) error {
	d, ok := s.pending[playerId]
	if !ok || d.Kind != PendingRPSChoice || s.conflict == nil {
		return fail(CodeNoPendingDecision, "you are not in a duel")
	}
	if !choice.valid() {
		return fail(CodeInvalidChoice, "unknown choice %q", choice)
	}
	c := s.conflict
	c.choices[playerId] = choice
	if !c.complete() {
		s.resolved(playerId)
		return nil
	}
	ties, err := s.evaluate(ctx)
	if err != nil {
		delete(c.choices, playerId)
		return err
	}
	s.resolved(playerId)
	c.decided = true
	c.ties = ties
	s.nextTie()
	return nil
}

// evaluate settles a duel whose choices are all in. If the lander beat anyone,
// each contender who beat the lander ends with an even share of the lander's
// money and the lander ends with the total of every other contender's money.
func (s *Session) evaluate(ctx context.Context) ([]string, error) {
	c := s.conflict
	lander, err := s.mustPlayer(c.lander)
	if err != nil {
		return nil, err
	}
	lc := c.choices[c.lander]

	var winners, others []*models.Player
	var ties []string
	beaten := 0
	outcomes := make(map[string]string)
	involved := []*models.Player{lander}
	for _, id := range c.contenders {
		o, _ := s.player(id)
		if o == nil {
			continue
		}
		involved = append(involved, o)
		ch := c.choices[id]
		switch {
		case ch.beats(lc):
			outcomes[id] = OutcomeWon
			winners = append(winners, o)
		case lc.beats(ch):
			outcomes[id] = OutcomeLost
			others = append(others, o)
			beaten++
		default:
			outcomes[id] = OutcomeTie
			others = append(others, o)
			ties = append(ties, id)
		}
	}

	choices := make(map[string]Choice, len(c.choices))
	for id, ch := range c.choices {
		choices[id] = ch
	}
	err = s.apply(ctx, involved, func(tx database.Tx) error {
		if beaten > 0 {
			pot := lander.Money
			if len(winners) > 0 {
				share := pot / len(winners)
				for _, w := range winners {
					w.Money = share
				}
			}
			sum := 0
			for _, o := range others {
				sum += o.Money
			}
			lander.Money = sum
		}
		s.record("conflictResult", lander.Id, map[string]interface{}{"choices": choices, "outcomes": outcomes})
		s.broadcast(EventRPSResult, RPSResult{LanderId: lander.Id, Choices: choices, Outcomes: outcomes})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ties, nil
}

// nextTie opens the draw for the next tied contender, or closes the duel.
func (s *Session) nextTie() {
	c := s.conflict
	if c == nil {
		return
	}
	if len(c.ties) == 0 {
		s.conflict = nil
		return
	}
	c.options = append([]int(nil), TieDenominations...)
	if s.shuffle != nil {
		s.shuffle(c.options)
	}
	tied := c.ties[0]
	s.await(&Pending{Kind: PendingTieAmount, PlayerId: c.lander, Options: c.options, Target: tied})
	s.broadcast(EventRPSTie, RPSTie{LanderId: c.lander, TiedPlayerId: tied, Options: len(c.options)})
}

// TieAmount draws one of the face-down amounts for a tie. The tied player pays
// the lander the drawn amount, capped by TieCeiling and by what they have.
func (s *Session) TieAmount(ctx context.Context, playerId, tiedId string, index int) error {
	s.lock()
	defer s.unlock()
	return s.chooseTieAmount(ctx, playerId, tiedId, index)
}

func (s *Session) chooseTieAmount(ctx context.Context, playerId, tiedId string, index int) error {
	d, ok := s.pending[playerId]
	if !ok || d.Kind != PendingTieAmount || s.conflict == nil {
		return fail(CodeNoPendingDecision, "no tie to settle")
	}
	if tiedId != "" && tiedId != d.Target {
		return fail(CodeInvalidChoice, "the tie being drawn is with %s", d.Target)
	}
	if index < 0 || index >= len(d.Options) {
		return fail(CodeInvalidChoice, "option %d out of range", index)
	}
	lander, err := s.mustPlayer(playerId)
	if err != nil {
		return err
	}
	tied, err := s.mustPlayer(d.Target)
	if err != nil {
		return err
	}

	amount := d.Options[index]
	if amount > TieCeiling {
		amount = TieCeiling
	}
	if amount > tied.Money {
		amount = tied.Money
	}
	if amount < 0 {
		amount = 0
	}
	err = s.apply(ctx, []*models.Player{lander, tied}, func(tx database.Tx) error {
		tied.Money -= amount
		lander.Money += amount
		s.record("tieResolved", lander.Id, map[string]interface{}{"tied": tied.Id, "amount": amount})
		s.broadcast(EventRPSTieResolved, RPSTieResolved{LanderId: lander.Id, TiedPlayerId: tied.Id, Amount: amount})
		return nil
	})
	if err != nil {
		return err
	}
	s.resolved(playerId)
	c := s.conflict
	c.ties = c.ties[1:]
	s.nextTie()
	return nil
}
