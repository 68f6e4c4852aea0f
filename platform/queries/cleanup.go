package queries

import (
	"context"
	"time"

	"github.com/DedS3t/tycoon-backend/app/engine"
	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/sirupsen/logrus"
)

// Dropper forgets everything cached for a game.
type Dropper interface {
	Drop(gameId string) error
}

// Sweeper removes finished games. A game is removed on the first sweep after
// the one that saw it finished, so its final state stays readable for at
// least one interval.
type Sweeper struct {
	manager *engine.Manager
	cache   Dropper
	seen    map[string]bool
}

func NewSweeper(m *engine.Manager, cache Dropper) *Sweeper {
	return &Sweeper{manager: m, cache: cache, seen: make(map[string]bool)}
}

// Sweep returns the ids removed by this pass.
func (s *Sweeper) Sweep() []string {
	var removed []string
	over := make(map[string]bool)
	for _, g := range s.manager.List(models.GameOver) {
		over[g.Id] = true
		if !s.seen[g.Id] {
			continue
		}
		s.cleanUp(g.Id)
		removed = append(removed, g.Id)
		delete(over, g.Id)
	}
	s.seen = over
	return removed
}

func (s *Sweeper) cleanUp(game_id string) {
	s.manager.Remove(game_id)
	if s.cache == nil {
		return
	}
	if err := s.cache.Drop(game_id); err != nil {
		logrus.WithError(err).WithField("game", game_id).Warn("drop cached game")
	}
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); len(removed) > 0 {
				logrus.WithField("games", removed).Info("removed finished games")
			}
		}
	}
}
