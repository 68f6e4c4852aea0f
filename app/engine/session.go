package engine

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/DedS3t/tycoon-backend/platform/board"
	"github.com/DedS3t/tycoon-backend/platform/database"
	"github.com/sirupsen/logrus"
)

// Notifier delivers outbound events to clients.
type Notifier interface {
	Broadcast(gameId, event string, payload interface{})
	Send(playerId, event string, payload interface{})
}

// SnapshotSink receives every committed snapshot.
type SnapshotSink interface {
	Publish(snap models.SessionSnapshot) error
}

// Dice rolls two six-sided dice.
type Dice func() (int, int)

func RandomDice() (int, int) {
	return rand.Intn(6) + 1, rand.Intn(6) + 1
}

type outbound struct {
	to      string // player id, empty for the whole game
	event   string
	payload interface{}
}

// Session is the authoritative state of one game. Every exported method takes
// the session lock for its whole duration, so state changes never interleave.
type Session struct {
	mu sync.Mutex

	id     string
	name   string
	status string
	winner string

	graph    *board.Graph
	store    database.Store
	notifier Notifier
	sink     SnapshotSink
	dice     Dice
	shuffle  func([]int)
	timeout  time.Duration
	log      *logrus.Entry

	players []*models.Player
	current int
	history []models.HistoryEntry

	move     *moveState
	turn     turnFlags
	conflict *conflict
	pending  map[string]*Pending
	loans    map[string]*models.Loan
	offers   map[string]*offer

	out   []outbound
	dirty bool

	snapMu sync.RWMutex
	snap   models.SessionSnapshot
}

func newSession(id, name string, m *Manager) *Session {
	s := &Session{
		id:       id,
		name:     name,
		status:   models.GameLobby,
		graph:    m.graph,
		store:    m.store,
		notifier: m.notifier,
		sink:     m.opts.sink,
		dice:     m.opts.dice,
		shuffle:  m.opts.shuffle,
		timeout:  m.opts.timeout,
		log:      logrus.WithField("game", id),
		pending:  make(map[string]*Pending),
		loans:    make(map[string]*models.Loan),
		offers:   make(map[string]*offer),
	}
	s.snap = s.buildSnapshot()
	return s
}

func (s *Session) Id() string { return s.id }

func (s *Session) Name() string { return s.name }

// Snapshot returns the state as of the last commit. It does not wait for
// in-flight operations.
func (s *Session) Snapshot() models.SessionSnapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

// History returns a copy of the applied actions.
func (s *Session) History() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) lock() {
	s.mu.Lock()
}

// unlock publishes a fresh snapshot if anything changed, releases the session
// and then delivers queued events, so slow clients never hold the lock.
func (s *Session) unlock() {
	if s.dirty {
		s.dirty = false
		s.publish()
	}
	out := s.out
	s.out = nil
	notifier := s.notifier
	s.mu.Unlock()
	if notifier == nil {
		return
	}
	for _, o := range out {
		if o.to == "" {
			notifier.Broadcast(s.id, o.event, o.payload)
		} else {
			notifier.Send(o.to, o.event, o.payload)
		}
	}
}

func (s *Session) broadcast(event string, payload interface{}) {
	s.out = append(s.out, outbound{event: event, payload: payload})
}

func (s *Session) sendTo(playerId, event string, payload interface{}) {
	s.out = append(s.out, outbound{to: playerId, event: event, payload: payload})
}

func (s *Session) record(kind, playerId string, payload map[string]interface{}) {
	s.history = append(s.history, models.HistoryEntry{
		Seq:      len(s.history) + 1,
		Kind:     kind,
		PlayerId: playerId,
		Payload:  payload,
		At:       time.Now().UTC(),
	})
}

func (s *Session) player(id string) (*models.Player, int) {
	for i, p := range s.players {
		if p.Id == id {
			return p, i
		}
	}
	return nil, -1
}

func (s *Session) mustPlayer(id string) (*models.Player, error) {
	p, _ := s.player(id)
	if p == nil {
		return nil, fail(CodeNotInGame, "player %s is not in this game", id)
	}
	return p, nil
}

func (s *Session) currentPlayer() *models.Player {
	if len(s.players) == 0 {
		return nil
	}
	return s.players[s.current]
}

// unit is the saved state an atomic change restores on failure.
type unit struct {
	roster  []*models.Player
	players []*models.Player
	clones  []*models.Player
	history int
	out     int
	current int
	status  string
	winner  string
	loans   map[string]models.Loan
}

func (s *Session) begin(players []*models.Player) *unit {
	u := &unit{
		roster:  append([]*models.Player(nil), s.players...),
		history: len(s.history),
		out:     len(s.out),
		current: s.current,
		status:  s.status,
		winner:  s.winner,
		loans:   make(map[string]models.Loan, len(s.loans)),
	}
	for id, l := range s.loans {
		u.loans[id] = *l
	}
	seen := make(map[*models.Player]bool)
	for _, p := range players {
		if p == nil || seen[p] {
			continue
		}
		seen[p] = true
		u.players = append(u.players, p)
		u.clones = append(u.clones, p.Clone())
	}
	return u
}

func (s *Session) restore(u *unit) {
	for i, p := range u.players {
		*p = *u.clones[i]
	}
	s.players = u.roster
	s.history = s.history[:u.history]
	s.out = s.out[:u.out]
	s.current = u.current
	s.status = u.status
	s.winner = u.winner
	for id, l := range s.loans {
		if saved, ok := u.loans[id]; ok {
			*l = saved
		} else {
			delete(s.loans, id)
		}
	}
	for id, saved := range u.loans {
		if _, ok := s.loans[id]; !ok {
			l := saved
			s.loans[id] = &l
		}
	}
}

// apply runs fn and persists the given players plus the session record in one
// transaction. fn may validate against durable rows through tx and mutate the
// players in memory. If anything fails the in-memory players, history, turn
// index and queued events are put back as they were.
func (s *Session) apply(ctx context.Context, players []*models.Player, fn func(tx database.Tx) error) error {
	u := s.begin(players)
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return s.abort(u, nil, err)
	}
	if fn != nil {
		if err := fn(tx); err != nil {
			return s.abort(u, tx, err)
		}
	}
	for _, p := range u.players {
		p.Version++
		if err := tx.WritePlayer(ctx, p, models.AllColumns...); err != nil {
			return s.abort(u, tx, err)
		}
	}
	if err := tx.WriteSession(ctx, s.sessionRow()); err != nil {
		return s.abort(u, tx, err)
	}
	if err := tx.Commit(); err != nil {
		return s.abort(u, nil, err)
	}
	s.dirty = true
	return nil
}

func (s *Session) abort(u *unit, tx database.Tx, err error) error {
	if tx != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.WithError(rbErr).Warn("rollback failed")
		}
	}
	s.restore(u)
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	s.log.WithError(err).Error("commit failed")
	return fail(CodeCommitFailed, "the action could not be saved, try again")
}

// sessionRow is the durable session row.
func (s *Session) sessionRow() *models.GameSession {
	order := make([]string, 0, len(s.players))
	for _, p := range s.players {
		order = append(order, p.Id)
	}
	loans := make([]models.Loan, 0, len(s.loans))
	for _, l := range s.loans {
		loans = append(loans, *l)
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].Id < loans[j].Id })
	return &models.GameSession{
		Id:                 s.id,
		Name:               s.name,
		Status:             s.status,
		TurnOrder:          order,
		CurrentPlayerIndex: s.current,
		Winner:             s.winner,
		History:            s.history,
		Loans:              loans,
		UpdatedAt:          time.Now().UTC(),
	}
}

func (s *Session) buildSnapshot() models.SessionSnapshot {
	snap := models.SessionSnapshot{
		Id:     s.id,
		Name:   s.name,
		Status: s.status,
		Winner: s.winner,
		Seq:    len(s.history),
	}
	if s.status == models.GameInProgress {
		if p := s.currentPlayer(); p != nil {
			snap.CurrentPlayerId = p.Id
		}
	}
	for _, p := range s.players {
		snap.Players = append(snap.Players, p.Dto())
	}
	for _, d := range s.pending {
		snap.Pending = append(snap.Pending, d.dto())
	}
	for _, l := range s.loans {
		snap.Loans = append(snap.Loans, *l)
	}
	sort.Slice(snap.Pending, func(i, j int) bool { return snap.Pending[i].PlayerId < snap.Pending[j].PlayerId })
	sort.Slice(snap.Loans, func(i, j int) bool { return snap.Loans[i].Id < snap.Loans[j].Id })
	return snap
}

// publish refreshes the read snapshot and fans it out.
func (s *Session) publish() {
	snap := s.buildSnapshot()
	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()

	if s.sink != nil {
		if err := s.sink.Publish(snap); err != nil {
			s.log.WithError(err).Warn("snapshot cache publish failed")
		}
	}
	if s.status != models.GameLobby {
		s.broadcast(EventPlayersStateUpdate, snap)
	}
}
