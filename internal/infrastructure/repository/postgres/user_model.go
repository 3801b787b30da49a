package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/nextinning/recruiting-api/internal/domain/user"
)

type userTableModel struct {
	ID                 int64          `db:"id"`
	PublicID           string         `db:"public_id"`
	FirstName          string         `db:"first_name"`
	LastName           string         `db:"last_name"`
	Email              sql.NullString `db:"email"`
	PasswordHash       sql.NullString `db:"password_hash"`
	Role               string         `db:"role"`
	State              sql.NullString `db:"state"`
	ProfileImage       sql.NullString `db:"profile_image"`
	RegistrationStatus string         `db:"registration_status"`
	IsActive           bool           `db:"is_active"`

	TeamID              sql.NullString `db:"team_public_id"`
	JerseyNumber        sql.NullString `db:"jersey_number"`
	Position            sql.NullString `db:"position"`
	Height              sql.NullString `db:"height"`
	Weight              sql.NullString `db:"weight"`
	BatsThrows          sql.NullString `db:"bats_throws"`
	Hometown            sql.NullString `db:"hometown"`
	HighSchool          sql.NullString `db:"high_school"`
	PreviousSchool      sql.NullString `db:"previous_school"`
	CommitmentStatus    sql.NullString `db:"commitment_status"`
	PlayerClass         sql.NullString `db:"player_class"`
	ProfileCompleteness int            `db:"profile_completeness"`
	AwardsAchievements  pq.StringArray `db:"awards_achievements"`

	CoachRecommendationURL        sql.NullString `db:"coach_recommendation_url"`
	CoachRecommendationFilename   sql.NullString `db:"coach_recommendation_filename"`
	CoachRecommendationUploadedAt *time.Time     `db:"coach_recommendation_uploaded_at"`
	CoachRecommendationFileSize   sql.NullInt64  `db:"coach_recommendation_file_size"`
	AcademicInfoURL               sql.NullString `db:"academic_info_url"`
	AcademicInfoFilename          sql.NullString `db:"academic_info_filename"`
	AcademicInfoUploadedAt        *time.Time     `db:"academic_info_uploaded_at"`
	AcademicInfoFileSize          sql.NullInt64  `db:"academic_info_file_size"`

	JobTitle   sql.NullString `db:"job_title"`
	School     sql.NullString `db:"school"`
	Division   sql.NullString `db:"division"`
	Conference sql.NullString `db:"conference"`

	StripeCustomerID   sql.NullString `db:"stripe_customer_id"`
	OutsetaAccountUID  sql.NullString `db:"outseta_account_uid"`
	OutsetaPersonUID   sql.NullString `db:"outseta_person_uid"`
	SubscriptionStatus sql.NullString `db:"subscription_status"`
	SubscriptionPlan   sql.NullString `db:"subscription_plan"`
	SubscriptionEndAt  *time.Time     `db:"subscription_end_at"`

	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type userInsertModel struct {
	PublicID           string  `db:"public_id"`
	FirstName          string  `db:"first_name"`
	LastName           string  `db:"last_name"`
	Email              *string `db:"email"`
	PasswordHash       *string `db:"password_hash"`
	Role               string  `db:"role"`
	State              *string `db:"state"`
	ProfileImage       *string `db:"profile_image"`
	RegistrationStatus string  `db:"registration_status"`
	IsActive           bool    `db:"is_active"`

	TeamID              *string        `db:"team_public_id"`
	JerseyNumber        *string        `db:"jersey_number"`
	Position            *string        `db:"position"`
	Height              *string        `db:"height"`
	Weight              *string        `db:"weight"`
	BatsThrows          *string        `db:"bats_throws"`
	Hometown            *string        `db:"hometown"`
	HighSchool          *string        `db:"high_school"`
	PreviousSchool      *string        `db:"previous_school"`
	CommitmentStatus    *string        `db:"commitment_status"`
	PlayerClass         *string        `db:"player_class"`
	ProfileCompleteness int            `db:"profile_completeness"`
	AwardsAchievements  pq.StringArray `db:"awards_achievements"`

	CoachRecommendationURL        *string    `db:"coach_recommendation_url"`
	CoachRecommendationFilename   *string    `db:"coach_recommendation_filename"`
	CoachRecommendationUploadedAt *time.Time `db:"coach_recommendation_uploaded_at"`
	CoachRecommendationFileSize   *int64     `db:"coach_recommendation_file_size"`
	AcademicInfoURL               *string    `db:"academic_info_url"`
	AcademicInfoFilename          *string    `db:"academic_info_filename"`
	AcademicInfoUploadedAt        *time.Time `db:"academic_info_uploaded_at"`
	AcademicInfoFileSize          *int64     `db:"academic_info_file_size"`

	JobTitle   *string `db:"job_title"`
	School     *string `db:"school"`
	Division   *string `db:"division"`
	Conference *string `db:"conference"`

	StripeCustomerID   *string    `db:"stripe_customer_id"`
	OutsetaAccountUID  *string    `db:"outseta_account_uid"`
	OutsetaPersonUID   *string    `db:"outseta_person_uid"`
	SubscriptionStatus *string    `db:"subscription_status"`
	SubscriptionPlan   *string    `db:"subscription_plan"`
	SubscriptionEndAt  *time.Time `db:"subscription_end_at"`
}

type playerVideoTableModel struct {
	ID         int64           `db:"id"`
	PublicID   string          `db:"public_id"`
	UserID     string          `db:"user_public_id"`
	URL        string          `db:"url"`
	Title      sql.NullString  `db:"title"`
	UploadedAt time.Time       `db:"uploaded_at"`
	FileSize   sql.NullInt64   `db:"file_size"`
	Duration   sql.NullFloat64 `db:"duration"`
}

type playerVideoInsertModel struct {
	PublicID   string    `db:"public_id"`
	UserID     string    `db:"user_public_id"`
	URL        string    `db:"url"`
	Title      *string   `db:"title"`
	UploadedAt time.Time `db:"uploaded_at"`
	FileSize   *int64    `db:"file_size"`
	Duration   *float64  `db:"duration"`
}

type battingStatTableModel struct {
	ID                 int64   `db:"id"`
	UserID             string  `db:"user_public_id"`
	SeasonLabel        string  `db:"season_label"`
	SeasonYear         string  `db:"season_year"`
	Latest             bool    `db:"latest"`
	GamesPlayed        int     `db:"games_played"`
	AtBats             int     `db:"at_bats"`
	Runs               int     `db:"runs"`
	Hits               int     `db:"hits"`
	Doubles            int     `db:"doubles"`
	Triples            int     `db:"triples"`
	HomeRuns           int     `db:"home_runs"`
	RBI                int     `db:"rbi"`
	Walks              int     `db:"walks"`
	Strikeouts         int     `db:"strikeouts"`
	StolenBases        int     `db:"stolen_bases"`
	BattingAverage     float64 `db:"batting_average"`
	OnBasePercentage   float64 `db:"on_base_percentage"`
	SluggingPercentage float64 `db:"slugging_percentage"`
}

type battingStatInsertModel struct {
	UserID             string  `db:"user_public_id"`
	SeasonLabel        string  `db:"season_label"`
	SeasonYear         string  `db:"season_year"`
	Latest             bool    `db:"latest"`
	GamesPlayed        int     `db:"games_played"`
	AtBats             int     `db:"at_bats"`
	Runs               int     `db:"runs"`
	Hits               int     `db:"hits"`
	Doubles            int     `db:"doubles"`
	Triples            int     `db:"triples"`
	HomeRuns           int     `db:"home_runs"`
	RBI                int     `db:"rbi"`
	Walks              int     `db:"walks"`
	Strikeouts         int     `db:"strikeouts"`
	StolenBases        int     `db:"stolen_bases"`
	BattingAverage     float64 `db:"batting_average"`
	OnBasePercentage   float64 `db:"on_base_percentage"`
	SluggingPercentage float64 `db:"slugging_percentage"`
}

type pitchingStatTableModel struct {
	ID                int64   `db:"id"`
	UserID            string  `db:"user_public_id"`
	SeasonLabel       string  `db:"season_label"`
	SeasonYear        string  `db:"season_year"`
	Latest            bool    `db:"latest"`
	Wins              int     `db:"wins"`
	Losses            int     `db:"losses"`
	ERA               float64 `db:"era"`
	GamesPitched      int     `db:"games_pitched"`
	Saves             int     `db:"saves"`
	InningsPitched    float64 `db:"innings_pitched"`
	HitsAllowed       int     `db:"hits_allowed"`
	WalksAllowed      int     `db:"walks_allowed"`
	StrikeoutsPitched int     `db:"strikeouts_pitched"`
}

type pitchingStatInsertModel struct {
	UserID            string  `db:"user_public_id"`
	SeasonLabel       string  `db:"season_label"`
	SeasonYear        string  `db:"season_year"`
	Latest            bool    `db:"latest"`
	Wins              int     `db:"wins"`
	Losses            int     `db:"losses"`
	ERA               float64 `db:"era"`
	GamesPitched      int     `db:"games_pitched"`
	Saves             int     `db:"saves"`
	InningsPitched    float64 `db:"innings_pitched"`
	HitsAllowed       int     `db:"hits_allowed"`
	WalksAllowed      int     `db:"walks_allowed"`
	StrikeoutsPitched int     `db:"strikeouts_pitched"`
}

type fieldingStatTableModel struct {
	ID                 int64   `db:"id"`
	UserID             string  `db:"user_public_id"`
	SeasonLabel        string  `db:"season_label"`
	SeasonYear         string  `db:"season_year"`
	Latest             bool    `db:"latest"`
	Putouts            int     `db:"putouts"`
	Assists            int     `db:"assists"`
	Errors             int     `db:"errors"`
	FieldingPercentage float64 `db:"fielding_percentage"`
	DoublePlays        int     `db:"double_plays"`
}

type fieldingStatInsertModel struct {
	UserID             string  `db:"user_public_id"`
	SeasonLabel        string  `db:"season_label"`
	SeasonYear         string  `db:"season_year"`
	Latest             bool    `db:"latest"`
	Putouts            int     `db:"putouts"`
	Assists            int     `db:"assists"`
	Errors             int     `db:"errors"`
	FieldingPercentage float64 `db:"fielding_percentage"`
	DoublePlays        int     `db:"double_plays"`
}

func userFromRow(row userTableModel) user.User {
	u := user.User{
		ID:                  row.PublicID,
		FirstName:           row.FirstName,
		LastName:            row.LastName,
		Email:               row.Email.String,
		PasswordHash:        row.PasswordHash.String,
		Role:                user.Role(row.Role),
		State:               row.State.String,
		ProfileImage:        row.ProfileImage.String,
		RegistrationStatus:  user.RegistrationStatus(row.RegistrationStatus),
		IsActive:            row.IsActive,
		TeamID:              row.TeamID.String,
		JerseyNumber:        row.JerseyNumber.String,
		Position:            row.Position.String,
		Height:              row.Height.String,
		Weight:              row.Weight.String,
		BatsThrows:          row.BatsThrows.String,
		Hometown:            row.Hometown.String,
		HighSchool:          row.HighSchool.String,
		PreviousSchool:      row.PreviousSchool.String,
		CommitmentStatus:    user.CommitmentStatus(row.CommitmentStatus.String),
		PlayerClass:         row.PlayerClass.String,
		ProfileCompleteness: row.ProfileCompleteness,
		AwardsAchievements:  []string(row.AwardsAchievements),
		JobTitle:            row.JobTitle.String,
		School:              row.School.String,
		Division:            row.Division.String,
		Conference:          row.Conference.String,
		StripeCustomerID:    row.StripeCustomerID.String,
		OutsetaAccountUID:   row.OutsetaAccountUID.String,
		OutsetaPersonUID:    row.OutsetaPersonUID.String,
		SubscriptionStatus:  row.SubscriptionStatus.String,
		SubscriptionPlan:    row.SubscriptionPlan.String,
		SubscriptionEndAt:   timeValue(row.SubscriptionEndAt),
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}

	if row.CoachRecommendationURL.Valid && row.CoachRecommendationURL.String != "" {
		u.CoachRecommendation = &user.Document{
			URL:        row.CoachRecommendationURL.String,
			Filename:   row.CoachRecommendationFilename.String,
			UploadedAt: timeValue(row.CoachRecommendationUploadedAt),
			FileSize:   row.CoachRecommendationFileSize.Int64,
		}
	}
	if row.AcademicInfoURL.Valid && row.AcademicInfoURL.String != "" {
		u.AcademicInfo = &user.Document{
			URL:        row.AcademicInfoURL.String,
			Filename:   row.AcademicInfoFilename.String,
			UploadedAt: timeValue(row.AcademicInfoUploadedAt),
			FileSize:   row.AcademicInfoFileSize.Int64,
		}
	}

	return u
}

func userToInsertModel(u user.User) userInsertModel {
	model := userInsertModel{
		PublicID:            u.ID,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Email:               optionalString(u.Email),
		PasswordHash:        optionalString(u.PasswordHash),
		Role:                string(u.Role),
		State:               optionalString(u.State),
		ProfileImage:        optionalString(u.ProfileImage),
		RegistrationStatus:  string(u.RegistrationStatus),
		IsActive:            u.IsActive,
		TeamID:              optionalString(u.TeamID),
		JerseyNumber:        optionalString(u.JerseyNumber),
		Position:            optionalString(u.Position),
		Height:              optionalString(u.Height),
		Weight:              optionalString(u.Weight),
		BatsThrows:          optionalString(u.BatsThrows),
		Hometown:            optionalString(u.Hometown),
		HighSchool:          optionalString(u.HighSchool),
		PreviousSchool:      optionalString(u.PreviousSchool),
		CommitmentStatus:    optionalString(string(u.CommitmentStatus)),
		PlayerClass:         optionalString(u.PlayerClass),
		ProfileCompleteness: u.ProfileCompleteness,
		AwardsAchievements:  pq.StringArray(u.AwardsAchievements),
		JobTitle:            optionalString(u.JobTitle),
		School:              optionalString(u.School),
		Division:            optionalString(u.Division),
		Conference:          optionalString(u.Conference),
		StripeCustomerID:    optionalString(u.StripeCustomerID),
		OutsetaAccountUID:   optionalString(u.OutsetaAccountUID),
		OutsetaPersonUID:    optionalString(u.OutsetaPersonUID),
		SubscriptionStatus:  optionalString(u.SubscriptionStatus),
		SubscriptionPlan:    optionalString(u.SubscriptionPlan),
		SubscriptionEndAt:   optionalTime(u.SubscriptionEndAt),
	}
	if model.AwardsAchievements == nil {
		model.AwardsAchievements = pq.StringArray{}
	}

	if u.CoachRecommendation != nil {
		model.CoachRecommendationURL = optionalString(u.CoachRecommendation.URL)
		model.CoachRecommendationFilename = optionalString(u.CoachRecommendation.Filename)
		model.CoachRecommendationUploadedAt = optionalTime(u.CoachRecommendation.UploadedAt)
		if u.CoachRecommendation.FileSize > 0 {
			size := u.CoachRecommendation.FileSize
			model.CoachRecommendationFileSize = &size
		}
	}
	if u.AcademicInfo != nil {
		model.AcademicInfoURL = optionalString(u.AcademicInfo.URL)
		model.AcademicInfoFilename = optionalString(u.AcademicInfo.Filename)
		model.AcademicInfoUploadedAt = optionalTime(u.AcademicInfo.UploadedAt)
		if u.AcademicInfo.FileSize > 0 {
			size := u.AcademicInfo.FileSize
			model.AcademicInfoFileSize = &size
		}
	}

	return model
}

func videoFromRow(row playerVideoTableModel) user.Video {
	return user.Video{
		ID:         row.PublicID,
		URL:        row.URL,
		Title:      row.Title.String,
		UploadedAt: row.UploadedAt,
		FileSize:   row.FileSize.Int64,
		Duration:   row.Duration.Float64,
	}
}

func battingFromRow(row battingStatTableModel) user.BattingRecord {
	return user.BattingRecord{
		SeasonYear:         row.SeasonLabel,
		Latest:             row.Latest,
		GamesPlayed:        row.GamesPlayed,
		AtBats:             row.AtBats,
		Runs:               row.Runs,
		Hits:               row.Hits,
		Doubles:            row.Doubles,
		Triples:            row.Triples,
		HomeRuns:           row.HomeRuns,
		RBI:                row.RBI,
		Walks:              row.Walks,
		Strikeouts:         row.Strikeouts,
		StolenBases:        row.StolenBases,
		BattingAverage:     row.BattingAverage,
		OnBasePercentage:   row.OnBasePercentage,
		SluggingPercentage: row.SluggingPercentage,
	}
}

func pitchingFromRow(row pitchingStatTableModel) user.PitchingRecord {
	return user.PitchingRecord{
		SeasonYear:        row.SeasonLabel,
		Latest:            row.Latest,
		Wins:              row.Wins,
		Losses:            row.Losses,
		ERA:               row.ERA,
		GamesPitched:      row.GamesPitched,
		Saves:             row.Saves,
		InningsPitched:    row.InningsPitched,
		HitsAllowed:       row.HitsAllowed,
		WalksAllowed:      row.WalksAllowed,
		StrikeoutsPitched: row.StrikeoutsPitched,
	}
}

func fieldingFromRow(row fieldingStatTableModel) user.FieldingRecord {
	return user.FieldingRecord{
		SeasonYear:         row.SeasonLabel,
		Latest:             row.Latest,
		Putouts:            row.Putouts,
		Assists:            row.Assists,
		Errors:             row.Errors,
		FieldingPercentage: row.FieldingPercentage,
		DoublePlays:        row.DoublePlays,
	}
}
