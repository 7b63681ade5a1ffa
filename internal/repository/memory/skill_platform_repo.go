// Package memory holds a process-local SkillPlatformRepository used when no
// DATABASE_URL is configured and by tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"skill-sync-backend/internal/domain"

	"github.com/google/uuid"
)

var ErrUnknownConnection = errors.New("certification references unknown platform connection")

type SkillPlatformRepo struct {
	mu          sync.RWMutex
	connections map[string]*domain.PlatformConnection // keyed by userID + "/" + platformName
	certs       []domain.CertificationRecord
	now         func() time.Time
}

var _ domain.SkillPlatformRepository = (*SkillPlatformRepo)(nil)

func NewSkillPlatformRepository() *SkillPlatformRepo {
	return &SkillPlatformRepo{
		connections: make(map[string]*domain.PlatformConnection),
		now:         time.Now,
	}
}

func connKey(userID, platformName string) string {
	return userID + "/" + platformName
}

func (r *SkillPlatformRepo) UpsertConnection(ctx context.Context, c *domain.PlatformConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	key := connKey(c.UserID, c.PlatformName)
	if existing, ok := r.connections[key]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	} else {
		c.ID = uuid.NewString()
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	stored := *c
	r.connections[key] = &stored
	return nil
}

func (r *SkillPlatformRepo) InsertCertification(ctx context.Context, cert *domain.CertificationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for _, c := range r.connections {
		if c.ID == cert.PlatformID {
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownConnection
	}

	if cert.ID == "" {
		cert.ID = uuid.NewString()
	}
	cert.CreatedAt = r.now().UTC()
	r.certs = append(r.certs, *cert)
	return nil
}

func (r *SkillPlatformRepo) DeleteCertificationsByPlatform(ctx context.Context, platformID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deleteCertsLocked(platformID)
	return nil
}

func (r *SkillPlatformRepo) deleteCertsLocked(platformID string) {
	kept := r.certs[:0]
	for _, c := range r.certs {
		if c.PlatformID != platformID {
			kept = append(kept, c)
		}
	}
	r.certs = kept
}

func (r *SkillPlatformRepo) ListConnections(ctx context.Context, userID string) ([]domain.PlatformConnection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := []domain.PlatformConnection{}
	for _, c := range r.connections {
		if c.UserID == userID {
			results = append(results, *c)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].PlatformName < results[j].PlatformName
	})
	return results, nil
}

// ListCertifications returns newest first. An empty platformName matches all.
func (r *SkillPlatformRepo) ListCertifications(ctx context.Context, userID, platformName string) ([]domain.CertificationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := []domain.CertificationRecord{}
	for i := len(r.certs) - 1; i >= 0; i-- {
		c := r.certs[i]
		if c.UserID != userID {
			continue
		}
		if platformName != "" && c.PlatformName != platformName {
			continue
		}
		results = append(results, c)
	}
	return results, nil
}

func (r *SkillPlatformRepo) DeleteConnection(ctx context.Context, userID, platformName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := connKey(userID, platformName)
	c, ok := r.connections[key]
	if !ok {
		return false, nil
	}
	r.deleteCertsLocked(c.ID)
	delete(r.connections, key)
	return true, nil
}
