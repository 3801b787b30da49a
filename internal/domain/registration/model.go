package registration

import (
	"fmt"
	"time"
)

// Status is the pending registration lifecycle. The only transition is
// pending -> completed, taken exactly once.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// PendingRegistration is the provisional signup record captured at
// checkout-start. It is the source of truth for the account until the
// payment provider confirms a subscription, after which it goes inert and is
// kept for audit.
type PendingRegistration struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	State        string
	ProfileImage string
	Plan         string

	// Scout fields.
	TeamID   string
	JobTitle string

	// Coach fields.
	School     string
	Division   string
	Conference string

	// Provider correlation ids.
	StripeSessionID        string
	OutsetaAccountUID      string
	OutsetaPersonUID       string
	OutsetaSubscriptionUID string

	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p PendingRegistration) Validate() error {
	if p.Email == "" {
		return fmt.Errorf("registration email is required")
	}
	if p.Role == "" {
		return fmt.Errorf("registration role is required")
	}
	if p.Status != StatusPending && p.Status != StatusCompleted {
		return fmt.Errorf("invalid registration status: %s", p.Status)
	}

	return nil
}
