package postgres

import (
	"database/sql"
	"time"

	"github.com/nextinning/recruiting-api/internal/domain/registration"
)

type pendingRegistrationTableModel struct {
	ID           int64          `db:"id"`
	PublicID     string         `db:"public_id"`
	FirstName    string         `db:"first_name"`
	LastName     string         `db:"last_name"`
	Email        string         `db:"email"`
	PasswordHash sql.NullString `db:"password_hash"`
	Role         string         `db:"role"`
	State        sql.NullString `db:"state"`
	ProfileImage sql.NullString `db:"profile_image"`
	Plan         sql.NullString `db:"plan"`

	TeamID   sql.NullString `db:"team_public_id"`
	JobTitle sql.NullString `db:"job_title"`

	School     sql.NullString `db:"school"`
	Division   sql.NullString `db:"division"`
	Conference sql.NullString `db:"conference"`

	StripeSessionID        sql.NullString `db:"stripe_session_id"`
	OutsetaAccountUID      sql.NullString `db:"outseta_account_uid"`
	OutsetaPersonUID       sql.NullString `db:"outseta_person_uid"`
	OutsetaSubscriptionUID sql.NullString `db:"outseta_subscription_uid"`

	Status    string     `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type pendingRegistrationInsertModel struct {
	PublicID     string  `db:"public_id"`
	FirstName    string  `db:"first_name"`
	LastName     string  `db:"last_name"`
	Email        string  `db:"email"`
	PasswordHash *string `db:"password_hash"`
	Role         string  `db:"role"`
	State        *string `db:"state"`
	ProfileImage *string `db:"profile_image"`
	Plan         *string `db:"plan"`

	TeamID   *string `db:"team_public_id"`
	JobTitle *string `db:"job_title"`

	School     *string `db:"school"`
	Division   *string `db:"division"`
	Conference *string `db:"conference"`

	StripeSessionID        *string `db:"stripe_session_id"`
	OutsetaAccountUID      *string `db:"outseta_account_uid"`
	OutsetaPersonUID       *string `db:"outseta_person_uid"`
	OutsetaSubscriptionUID *string `db:"outseta_subscription_uid"`

	Status string `db:"status"`
}

func pendingRegistrationFromRow(row pendingRegistrationTableModel) registration.PendingRegistration {
	return registration.PendingRegistration{
		ID:                     row.PublicID,
		FirstName:              row.FirstName,
		LastName:               row.LastName,
		Email:                  row.Email,
		PasswordHash:           row.PasswordHash.String,
		Role:                   row.Role,
		State:                  row.State.String,
		ProfileImage:           row.ProfileImage.String,
		Plan:                   row.Plan.String,
		TeamID:                 row.TeamID.String,
		JobTitle:               row.JobTitle.String,
		School:                 row.School.String,
		Division:               row.Division.String,
		Conference:             row.Conference.String,
		StripeSessionID:        row.StripeSessionID.String,
		OutsetaAccountUID:      row.OutsetaAccountUID.String,
		OutsetaPersonUID:       row.OutsetaPersonUID.String,
		OutsetaSubscriptionUID: row.OutsetaSubscriptionUID.String,
		Status:                 registration.Status(row.Status),
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
	}
}

func pendingRegistrationToInsertModel(p registration.PendingRegistration) pendingRegistrationInsertModel {
	return pendingRegistrationInsertModel{
		PublicID:               p.ID,
		FirstName:              p.FirstName,
		LastName:               p.LastName,
		Email:                  p.Email,
		PasswordHash:           optionalString(p.PasswordHash),
		Role:                   p.Role,
		State:                  optionalString(p.State),
		ProfileImage:           optionalString(p.ProfileImage),
		Plan:                   optionalString(p.Plan),
		TeamID:                 optionalString(p.TeamID),
		JobTitle:               optionalString(p.JobTitle),
		School:                 optionalString(p.School),
		Division:               optionalString(p.Division),
		Conference:             optionalString(p.Conference),
		StripeSessionID:        optionalString(p.StripeSessionID),
		OutsetaAccountUID:      optionalString(p.OutsetaAccountUID),
		OutsetaPersonUID:       optionalString(p.OutsetaPersonUID),
		OutsetaSubscriptionUID: optionalString(p.OutsetaSubscriptionUID),
		Status:                 string(p.Status),
	}
}
