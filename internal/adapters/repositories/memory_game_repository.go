package repositories

import (
	"context"
	"fugitive-hunt-service/internal/domain"
	"sync"
	"time"
)

// MemoryGameRepository is an in-memory catalog and game store guarded by a
// single mutex. It implements both the CatalogRepository and GameStore ports
// and exists for tests and demos that want a fresh isolated store per case
// without a database file.
type MemoryGameRepository struct {
	mu           sync.Mutex
	destinations []*domain.Destination
	vehicles     []*domain.VehicleClass
	sessions     map[string]*domain.Session
	claims       []*domain.Claim
	nextClaimID  int64
}

func NewMemoryGameRepository(destinations []*domain.Destination, vehicles []*domain.VehicleClass) *MemoryGameRepository {
	return &MemoryGameRepository{
		destinations: destinations,
		vehicles:     vehicles,
		sessions:     make(map[string]*domain.Session),
		nextClaimID:  1,
	}
}

func (m *MemoryGameRepository) ListDestinations(ctx context.Context) ([]*domain.Destination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Destination, len(m.destinations))
	copy(out, m.destinations)
	return out, nil
}

func (m *MemoryGameRepository) ListVehicles(ctx context.Context) ([]*domain.VehicleClass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.VehicleClass, len(m.vehicles))
	copy(out, m.vehicles)
	return out, nil
}

func (m *MemoryGameRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *session
	m.sessions[session.SessionID] = &copied
	return nil
}

func (m *MemoryGameRepository) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.sessions[sessionID]
	return ok, nil
}

func (m *MemoryGameRepository) VehicleUsage(ctx context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.vehicleUsageLocked(), nil
}

func (m *MemoryGameRepository) SessionDestinations(ctx context.Context, sessionID string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sessionDestinationsLocked(sessionID), nil
}

// CommitBatch holds the mutex across validation and insertion, which gives
// the same all-or-nothing and linearization guarantees a transaction does.
func (m *MemoryGameRepository) CommitBatch(ctx context.Context, sessionID string, batch []domain.ClaimRequest) ([]*domain.Claim, error) {
	if len(batch) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return nil, domain.ErrSessionNotFound
	}

	destIndex := make(map[string]*domain.Destination, len(m.destinations))
	for _, d := range m.destinations {
		destIndex[d.DestinationID] = d
	}
	vehicleIndex := make(map[string]*domain.VehicleClass, len(m.vehicles))
	for _, v := range m.vehicles {
		vehicleIndex[v.VehicleID] = v
	}

	err := domain.ValidateBatch(batch, destIndex, vehicleIndex,
		m.sessionDestinationsLocked(sessionID), m.vehicleUsageLocked())
	if err != nil {
		return nil, err
	}

	committed := make([]*domain.Claim, 0, len(batch))
	for _, c := range batch {
		claim := &domain.Claim{
			ClaimID:       m.nextClaimID,
			SessionID:     sessionID,
			Participant:   c.Participant,
			DestinationID: c.DestinationID,
			VehicleID:     c.VehicleID,
		}
		m.nextClaimID++
		m.claims = append(m.claims, claim)
		committed = append(committed, claim)
	}

	return committed, nil
}

func (m *MemoryGameRepository) ListClaims(ctx context.Context, sessionID string) ([]*domain.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Claim, 0, 8)
	for _, c := range m.claims {
		if c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemoryGameRepository) ResolveSession(ctx context.Context, sessionID string) (*domain.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	claims := make([]*domain.Claim, 0, 8)
	remaining := make([]*domain.Claim, 0, len(m.claims))
	for _, c := range m.claims {
		if c.SessionID == sessionID {
			claims = append(claims, c)
		} else {
			remaining = append(remaining, c)
		}
	}

	outcome := domain.ResolveOutcome(session.HiddenDestinationID, claims)

	delete(m.sessions, sessionID)
	m.claims = remaining

	return &outcome, nil
}

func (m *MemoryGameRepository) PurgeSessionsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	purged := 0
	for id, session := range m.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
			purged++

			remaining := m.claims[:0]
			for _, c := range m.claims {
				if c.SessionID != id {
					remaining = append(remaining, c)
				}
			}
			m.claims = remaining
		}
	}

	return purged, nil
}

func (m *MemoryGameRepository) vehicleUsageLocked() map[string]int {
	usage := make(map[string]int, len(m.vehicles))
	for _, c := range m.claims {
		usage[c.VehicleID]++
	}
	return usage
}

func (m *MemoryGameRepository) sessionDestinationsLocked(sessionID string) map[string]bool {
	taken := make(map[string]bool, 8)
	for _, c := range m.claims {
		if c.SessionID == sessionID {
			taken[c.DestinationID] = true
		}
	}
	return taken
}
