package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/DedS3t/tycoon-backend/platform/board"
	"github.com/DedS3t/tycoon-backend/platform/database"
	"github.com/stretchr/testify/require"
)

type sent struct {
	to      string
	event   string
	payload interface{}
}

// recorder is a Notifier that keeps everything it is asked to deliver.
type recorder struct {
	mu     sync.Mutex
	events []sent
}

func (r *recorder) Broadcast(gameId, event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sent{event: event, payload: payload})
}

func (r *recorder) Send(playerId, event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sent{to: playerId, event: event, payload: payload})
}

func (r *recorder) named(event string) []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sent
	for _, e := range r.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// scriptedDice hands out queued rolls, then 1+2 forever.
type scriptedDice struct {
	mu   sync.Mutex
	next [][2]int
}

func (d *scriptedDice) push(a, b int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next = append(d.next, [2]int{a, b})
}

func (d *scriptedDice) roll() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.next) == 0 {
		return 1, 2
	}
	r := d.next[0]
	d.next = d.next[1:]
	return r[0], r[1]
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	m     *Manager
	s     *Session
	store *database.MemoryStore
	rec   *recorder
	dice  *scriptedDice
	ids   []string
}

func newFixture(t *testing.T, players int, opts ...Option) *fixture {
	return newFixtureOn(t, board.LoadBoard(), players, opts...)
}

func newFixtureOn(t *testing.T, g *board.Graph, players int, opts ...Option) *fixture {
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: database.NewMemoryStore(),
		rec:   &recorder{},
		dice:  &scriptedDice{},
	}
	opts = append([]Option{WithDice(f.dice.roll), WithShuffle(func([]int) {})}, opts...)
	f.m = NewManager(g, f.store, opts...)
	f.m.SetNotifier(f.rec)
	f.s = f.m.Create("test game")
	for i := 0; i < players; i++ {
		p, err := f.s.Join(f.ctx, fmt.Sprintf("player%d", i+1))
		require.NoError(t, err)
		require.NoError(t, f.s.SelectPiece(f.ctx, p.Id, Pieces[i]))
		f.ids = append(f.ids, p.Id)
	}
	return f
}

// started returns a fixture whose game is already running.
func started(t *testing.T, players int, opts ...Option) *fixture {
	f := newFixture(t, players, opts...)
	f.start()
	return f
}

func (f *fixture) start() {
	for _, id := range f.ids {
		require.NoError(f.t, f.s.SetReady(f.ctx, id, true))
	}
	require.Equal(f.t, models.GameInProgress, f.s.Snapshot().Status)
	f.rec.reset()
}

// set edits a player as if the change had been committed.
func (f *fixture) set(id string, fn func(p *models.Player)) {
	f.s.lock()
	defer f.s.unlock()
	p, _ := f.s.player(id)
	require.NotNil(f.t, p)
	fn(p)
	f.store.SetPlayerRow(p)
}

func (f *fixture) get(id string) *models.Player {
	f.s.lock()
	defer f.s.unlock()
	p, _ := f.s.player(id)
	if p == nil {
		return nil
	}
	return p.Clone()
}

func (f *fixture) row(id string) *models.Player {
	p, ok := f.store.PlayerRow(id)
	require.True(f.t, ok, "no stored row for %s", id)
	return p
}

func (f *fixture) place(id string, tile, prev int) {
	f.set(id, func(p *models.Player) {
		p.TileId, p.PrevTile = tile, prev
	})
}

// rollTo rolls a+b for id and requires it to succeed.
func (f *fixture) rollTo(id string, a, b int) {
	f.dice.push(a, b)
	require.NoError(f.t, f.s.RollDice(f.ctx, id))
}

func requireCode(t *testing.T, code string, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, CodeOf(err), err.Error())
}
