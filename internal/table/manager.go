package table

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MJE43/colorway-poker/internal/engine"
)

// SeedFunc supplies the server seed for a table's generation. Generation 0
// is the seed a table opens with; each rotation asks for the next.
type SeedFunc func(tableID uuid.UUID, generation int) (string, error)

// RandomSeeds draws every server seed from crypto/rand.
func RandomSeeds(uuid.UUID, int) (string, error) {
	return engine.NewServerSeed()
}

// Options configure a Manager. Zero values get defaults.
type Options struct {
	Clock      Clock
	Hooks      Hooks
	Bankroll   decimal.Decimal
	ServerSeed SeedFunc
	Logger     *log.Logger
}

// Manager owns every open table.
type Manager struct {
	mu     sync.RWMutex
	tables map[uuid.UUID]*Table
	opts   Options
}

// NewManager creates an empty table registry.
func NewManager(opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Bankroll.IsZero() {
		opts.Bankroll = DefaultBankroll
	}
	if opts.ServerSeed == nil {
		opts.ServerSeed = RandomSeeds
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stdout, "[TABLE] ", log.LstdFlags)
	}
	return &Manager{
		tables: make(map[uuid.UUID]*Table),
		opts:   opts,
	}
}

// Open creates a table. An empty clientSeed gets a random one.
func (m *Manager) Open(clientSeed string) (*Table, error) {
	id := uuid.New()
	server, err := m.opts.ServerSeed(id, 0)
	if err != nil {
		return nil, fmt.Errorf("server seed: %w", err)
	}
	if clientSeed == "" {
		seed, err := engine.NewServerSeed()
		if err != nil {
			return nil, err
		}
		clientSeed = seed[:16]
	}

	t := &Table{
		id:       id,
		seeds:    engine.Seeds{Server: server, Client: clientSeed},
		bankroll: m.opts.Bankroll,
		status:   StatusIdle,
		clock:    m.opts.Clock,
		hooks:    m.opts.Hooks,
		logger:   m.opts.Logger,
		nextSeed: func(gen int) (string, error) { return m.opts.ServerSeed(id, gen) },
	}

	m.mu.Lock()
	m.tables[id] = t
	m.mu.Unlock()

	m.opts.Logger.Printf("table=%s opened", id)
	return t, nil
}

// Get returns an open table.
func (m *Manager) Get(id uuid.UUID) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, ErrTableNotFound
	}
	return t, nil
}

// Close removes a table and cancels its pending deadline.
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	t, ok := m.tables[id]
	delete(m.tables, id)
	m.mu.Unlock()
	if !ok {
		return ErrTableNotFound
	}
	t.stop()
	m.opts.Logger.Printf("table=%s closed", id)
	return nil
}

// Count returns the number of open tables.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}

// Shutdown cancels every pending deadline.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tables {
		t.stop()
	}
}
