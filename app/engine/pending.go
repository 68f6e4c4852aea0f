package engine

import (
	"context"
	"time"

	"github.com/DedS3t/tycoon-backend/app/models"
)

type PendingKind string

const (
	PendingBranch    PendingKind = "branch"
	PendingRPSChoice PendingKind = "rpsChoice"
	PendingTieAmount PendingKind = "tieAmount"
)

// Pending is a decision the engine is waiting on. At most one exists per
// player and it is removed only by being resolved (or by the player leaving).
type Pending struct {
	Kind     PendingKind
	PlayerId string
	Options  []int
	// Target is the tied player for a tie amount.
	Target string

	timer *time.Timer
}

func (p *Pending) dto() models.PendingDto {
	d := models.PendingDto{PlayerId: p.PlayerId, Kind: string(p.Kind), Target: p.Target}
	if p.Kind == PendingBranch {
		d.Options = append([]int(nil), p.Options...)
	}
	return d
}

func (s *Session) await(p *Pending) {
	s.pending[p.PlayerId] = p
	s.dirty = true
	if s.timeout > 0 {
		p.timer = time.AfterFunc(s.timeout, func() { s.expire(p) })
	}
}

func (s *Session) resolved(playerId string) {
	if p, ok := s.pending[playerId]; ok {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(s.pending, playerId)
		s.dirty = true
	}
}

// expire answers a decision nobody answered in time.
func (s *Session) expire(p *Pending) {
	s.lock()
	defer s.unlock()
	if s.pending[p.PlayerId] != p {
		return
	}
	ctx := context.Background()
	log := s.log.WithField("player", p.PlayerId).WithField("kind", p.Kind)
	log.Info("decision timed out, applying default")

	var err error
	switch p.Kind {
	case PendingBranch:
		err = s.chooseBranch(ctx, p.PlayerId, 0)
	case PendingRPSChoice:
		err = s.chooseRPS(ctx, p.PlayerId, Rock)
	case PendingTieAmount:
		err = s.chooseTieAmount(ctx, p.PlayerId, p.Target, 0)
	}
	if err != nil {
		log.WithError(err).Warn("default resolution failed")
	}
}

func (s *Session) stopTimers() {
	for _, p := range s.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
	}
	for _, o := range s.offers {
		if o.timer != nil {
			o.timer.Stop()
		}
	}
}

func (s *Session) teardown() {
	s.lock()
	defer s.unlock()
	s.stopTimers()
	s.pending = make(map[string]*Pending)
	s.offers = make(map[string]*offer)
	s.conflict = nil
	s.move = nil
}
