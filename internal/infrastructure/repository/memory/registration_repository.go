package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nextinning/recruiting-api/internal/domain/registration"
)

type RegistrationRepository struct {
	mu      sync.Mutex
	records map[string]registration.PendingRegistration
	order   []string
	now     func() time.Time
}

func NewRegistrationRepository() *RegistrationRepository {
	return &RegistrationRepository{
		records: make(map[string]registration.PendingRegistration),
		now:     time.Now,
	}
}

func (r *RegistrationRepository) Create(_ context.Context, p registration.PendingRegistration) (registration.PendingRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[p.ID]; exists {
		return registration.PendingRegistration{}, fmt.Errorf("pending registration %s already exists", p.ID)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
	}
	p.UpdatedAt = p.CreatedAt
	r.records[p.ID] = p
	r.order = append(r.order, p.ID)

	return p, nil
}

func (r *RegistrationRepository) GetByID(_ context.Context, registrationID string) (registration.PendingRegistration, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.records[registrationID]
	return p, ok, nil
}

func (r *RegistrationRepository) GetByOutsetaAccountUID(_ context.Context, accountUID string) (registration.PendingRegistration, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Newest record wins when an account was re-registered.
	for i := len(r.order) - 1; i >= 0; i-- {
		p := r.records[r.order[i]]
		if p.OutsetaAccountUID == accountUID {
			return p, true, nil
		}
	}

	return registration.PendingRegistration{}, false, nil
}

func (r *RegistrationRepository) GetByEmail(_ context.Context, email string) (registration.PendingRegistration, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.order) - 1; i >= 0; i-- {
		p := r.records[r.order[i]]
		if strings.EqualFold(p.Email, strings.TrimSpace(email)) {
			return p, true, nil
		}
	}

	return registration.PendingRegistration{}, false, nil
}

func (r *RegistrationRepository) SaveOutsetaUIDs(_ context.Context, registrationID, accountUID, personUID, subscriptionUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.records[registrationID]
	if !ok {
		return fmt.Errorf("pending registration %s not found", registrationID)
	}
	if accountUID != "" {
		p.OutsetaAccountUID = accountUID
	}
	if personUID != "" {
		p.OutsetaPersonUID = personUID
	}
	if subscriptionUID != "" {
		p.OutsetaSubscriptionUID = subscriptionUID
	}
	p.UpdatedAt = r.now()
	r.records[registrationID] = p

	return nil
}

func (r *RegistrationRepository) CompleteIfPending(_ context.Context, registrationID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.records[registrationID]
	if !ok || p.Status != registration.StatusPending {
		return false, nil
	}

	p.Status = registration.StatusCompleted
	p.UpdatedAt = r.now()
	r.records[registrationID] = p

	return true, nil
}
