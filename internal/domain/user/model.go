package user

import (
	"fmt"
	"strings"
	"time"
)

// Role separates account types sharing the users collection.
type Role string

const (
	RolePlayer Role = "player"
	RoleCoach  Role = "coach"
	RoleScout  Role = "scout"
	RoleAdmin  Role = "superAdmin"
)

var AllRoles = map[Role]struct{}{
	RolePlayer: {},
	RoleCoach:  {},
	RoleScout:  {},
	RoleAdmin:  {},
}

type RegistrationStatus string

const (
	RegistrationInProgress RegistrationStatus = "inProgress"
	RegistrationPending    RegistrationStatus = "pending"
	RegistrationApproved   RegistrationStatus = "approved"
	RegistrationRejected   RegistrationStatus = "rejected"
)

type CommitmentStatus string

const (
	CommitmentCommitted   CommitmentStatus = "committed"
	CommitmentUncommitted CommitmentStatus = "uncommitted"
)

// BattingRecord is one season of plate-appearance statistics. Latest marks
// the most recent season on record for the player.
type BattingRecord struct {
	SeasonYear         string
	Latest             bool
	GamesPlayed        int
	AtBats             int
	Runs               int
	Hits               int
	Doubles            int
	Triples            int
	HomeRuns           int
	RBI                int
	Walks              int
	Strikeouts         int
	StolenBases        int
	BattingAverage     float64
	OnBasePercentage   float64
	SluggingPercentage float64
}

type PitchingRecord struct {
	SeasonYear        string
	Latest            bool
	Wins              int
	Losses            int
	ERA               float64
	GamesPitched      int
	Saves             int
	InningsPitched    float64
	HitsAllowed       int
	WalksAllowed      int
	StrikeoutsPitched int
}

type FieldingRecord struct {
	SeasonYear         string
	Latest             bool
	Putouts            int
	Assists            int
	Errors             int
	FieldingPercentage float64
	DoublePlays        int
}

// Video is an uploaded highlight clip attached to a player profile.
type Video struct {
	ID         string
	URL        string
	Title      string
	UploadedAt time.Time
	FileSize   int64
	Duration   float64
}

// Document is a supporting attachment (coach recommendation, academic info).
type Document struct {
	URL        string
	Filename   string
	UploadedAt time.Time
	FileSize   int64
}

// User is any account on the platform. Player-only fields are zero for
// coaches and scouts, and vice versa.
type User struct {
	ID                 string
	FirstName          string
	LastName           string
	Email              string
	PasswordHash       string
	Role               Role
	State              string
	ProfileImage       string
	RegistrationStatus RegistrationStatus
	IsActive           bool

	// Player fields.
	TeamID               string
	JerseyNumber         string
	Position             string
	Height               string
	Weight               string
	BatsThrows           string
	Hometown             string
	HighSchool           string
	PreviousSchool       string
	CommitmentStatus     CommitmentStatus
	PlayerClass          string
	ProfileCompleteness  int
	AwardsAchievements   []string
	Videos               []Video
	CoachRecommendation  *Document
	AcademicInfo         *Document
	BattingStats         []BattingRecord
	PitchingStats        []PitchingRecord
	FieldingStats        []FieldingRecord

	// Scout fields.
	JobTitle string

	// Coach fields.
	School     string
	Division   string
	Conference string

	// Billing references maintained by the registration/webhook flows.
	StripeCustomerID    string
	OutsetaAccountUID   string
	OutsetaPersonUID    string
	SubscriptionStatus  string
	SubscriptionPlan    string
	SubscriptionEndAt   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Principal identifies the authenticated caller of a request.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) Validate() error {
	if strings.TrimSpace(u.FirstName) == "" {
		return fmt.Errorf("user first name is required")
	}
	if _, ok := AllRoles[u.Role]; !ok {
		return fmt.Errorf("invalid user role: %s", u.Role)
	}
	if u.Role != RolePlayer && strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("user email is required for role %s", u.Role)
	}
	if u.Role == RolePlayer && strings.TrimSpace(u.TeamID) == "" {
		return fmt.Errorf("player team id is required")
	}
	return nil
}

// CompletenessScore grades a player profile out of 100. Core registration
// fields are worth 75; the optional uploads close the remaining quarter.
func (u User) CompletenessScore() int {
	score := 75
	if len(u.Videos) > 0 {
		score += 8
	}
	if u.CoachRecommendation != nil {
		score += 9
	}
	if len(u.AwardsAchievements) > 0 {
		score += 8
	}
	return score
}

// LatestSeasonLabel returns the season year of the first non-empty latest
// stat record, used as the player's class label on search results.
func (u User) LatestSeasonLabel() string {
	for _, b := range u.BattingStats {
		if b.Latest {
			return b.SeasonYear
		}
	}
	for _, p := range u.PitchingStats {
		if p.Latest {
			return p.SeasonYear
		}
	}
	for _, f := range u.FieldingStats {
		if f.Latest {
			return f.SeasonYear
		}
	}
	return ""
}
