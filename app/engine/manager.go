package engine

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/DedS3t/tycoon-backend/app/models"
	"github.com/DedS3t/tycoon-backend/pkg"
	"github.com/DedS3t/tycoon-backend/platform/board"
	"github.com/DedS3t/tycoon-backend/platform/database"
)

type options struct {
	dice    Dice
	shuffle func([]int)
	timeout time.Duration
	sink    SnapshotSink
}

type Option func(*options)

func WithDice(d Dice) Option {
	return func(o *options) { o.dice = d }
}

// WithShuffle replaces the shuffle used for tie-break denominations.
func WithShuffle(f func([]int)) Option {
	return func(o *options) { o.shuffle = f }
}

// WithDecisionTimeout resolves unanswered decisions with a default after d.
// Zero keeps them pending forever.
func WithDecisionTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithSnapshotSink(sink SnapshotSink) Option {
	return func(o *options) { o.sink = sink }
}

func shuffleInts(xs []int) {
	rand.Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
}

// Manager owns every live session.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	graph    *board.Graph
	store    database.Store
	notifier Notifier
	opts     options
}

func NewManager(graph *board.Graph, store database.Store, opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		graph:    graph,
		store:    store,
		opts:     options{dice: RandomDice, shuffle: shuffleInts},
	}
	for _, opt := range opts {
		opt(&m.opts)
	}
	return m
}

// SetNotifier must be called before sessions are created.
func (m *Manager) SetNotifier(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifier = n
}

func (m *Manager) Graph() *board.Graph {
	return m.graph
}

func (m *Manager) Create(name string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := pkg.RandString(8)
	for m.sessions[id] != nil {
		id = pkg.RandString(8)
	}
	s := newSession(id, name, m)
	m.sessions[id] = s
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.teardown()
		delete(m.sessions, id)
	}
}

// List summarises sessions with the given status, or all when status is empty.
func (m *Manager) List(status string) []models.GameSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.GameSummary, 0, len(m.sessions))
	for _, s := range m.sessions {
		snap := s.Snapshot()
		if status != "" && snap.Status != status {
			continue
		}
		out = append(out, models.GameSummary{
			Id:      snap.Id,
			Name:    snap.Name,
			Status:  snap.Status,
			Players: len(snap.Players),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}
