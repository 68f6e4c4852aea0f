package database

import (
	"context"
	"errors"
	"sync"

	"github.com/DedS3t/tycoon-backend/app/models"
)

var errTxDone = errors.New("transaction already finished")

// MemoryStore keeps committed rows in process. It honours the same version
// checks as PGStore and is used when no database is configured.
type MemoryStore struct {
	mu          sync.Mutex
	players     map[string]*models.Player
	sessions    map[string]*models.GameSession
	failCommits int
	commits     int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players:  make(map[string]*models.Player),
		sessions: make(map[string]*models.GameSession),
	}
}

// FailNextCommits makes the next n commits return ErrConflict.
func (m *MemoryStore) FailNextCommits(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCommits = n
}

func (m *MemoryStore) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

// PlayerRow returns a copy of the committed row.
func (m *MemoryStore) PlayerRow(id string) (*models.Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (m *MemoryStore) SessionRow(id string) (*models.GameSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	c := *s
	c.History = append([]models.HistoryEntry(nil), s.History...)
	c.Loans = append([]models.Loan(nil), s.Loans...)
	return &c, true
}

// SetPlayerRow overwrites a committed row, bypassing version checks.
func (m *MemoryStore) SetPlayerRow(p *models.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.Id] = p.Clone()
}

func (m *MemoryStore) Begin(ctx context.Context) (Tx, error) {
	return &memTx{store: m, players: make(map[string]*models.Player)}, nil
}

type memTx struct {
	store   *MemoryStore
	players map[string]*models.Player
	session *models.GameSession
	done    bool
}

func (t *memTx) Player(ctx context.Context, id string) (*models.Player, error) {
	if t.done {
		return nil, errTxDone
	}
	if p, ok := t.players[id]; ok {
		return p.Clone(), nil
	}
	p, ok := t.store.PlayerRow(id)
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (t *memTx) WritePlayer(ctx context.Context, p *models.Player, columns ...string) error {
	if t.done {
		return errTxDone
	}
	if !t.store.versionMatches(p) {
		return ErrConflict
	}
	t.players[p.Id] = p.Clone()
	return nil
}

func (t *memTx) WriteSession(ctx context.Context, s *models.GameSession) error {
	if t.done {
		return errTxDone
	}
	c := *s
	c.TurnOrder = append([]string(nil), s.TurnOrder...)
	c.History = append([]models.HistoryEntry(nil), s.History...)
	c.Loans = append([]models.Loan(nil), s.Loans...)
	t.session = &c
	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.done = true
	m := t.store
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCommits > 0 {
		m.failCommits--
		return ErrConflict
	}
	for _, p := range t.players {
		if !m.versionMatchesLocked(p) {
			return ErrConflict
		}
	}
	for id, p := range t.players {
		m.players[id] = p
	}
	if t.session != nil {
		m.sessions[t.session.Id] = t.session
	}
	m.commits++
	return nil
}

func (t *memTx) Rollback() error {
	t.done = true
	return nil
}

func (m *MemoryStore) versionMatches(p *models.Player) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versionMatchesLocked(p)
}

func (m *MemoryStore) versionMatchesLocked(p *models.Player) bool {
	stored, ok := m.players[p.Id]
	if !ok {
		return p.Version == 1
	}
	return stored.Version == p.Version-1
}
