package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nextinning/recruiting-api/internal/domain/user"
	"github.com/nextinning/recruiting-api/internal/usecase"
)

type Handler struct {
	playerService       *usecase.PlayerService
	teamService         *usecase.TeamService
	dashboardService    *usecase.DashboardService
	followService       *usecase.FollowService
	registrationService *usecase.RegistrationService
	subscriptionService *usecase.SubscriptionService
	importService       *usecase.ImportService
	logger              *slog.Logger
	validator           *validator.Validate

	mediaBaseURL         string
	stripeWebhookSecret  string
	outsetaWebhookSecret string
}

// HandlerConfig carries the non-service knobs of the HTTP layer.
type HandlerConfig struct {
	MediaBaseURL         string
	StripeWebhookSecret  string
	OutsetaWebhookSecret string
}

func NewHandler(
	playerService *usecase.PlayerService,
	teamService *usecase.TeamService,
	dashboardService *usecase.DashboardService,
	followService *usecase.FollowService,
	registrationService *usecase.RegistrationService,
	subscriptionService *usecase.SubscriptionService,
	importService *usecase.ImportService,
	logger *slog.Logger,
	cfg HandlerConfig,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		playerService:        playerService,
		teamService:          teamService,
		dashboardService:     dashboardService,
		followService:        followService,
		registrationService:  registrationService,
		subscriptionService:  subscriptionService,
		importService:        importService,
		logger:               logger,
		validator:            validator.New(),
		mediaBaseURL:         strings.TrimRight(cfg.MediaBaseURL, "/"),
		stripeWebhookSecret:  cfg.StripeWebhookSecret,
		outsetaWebhookSecret: cfg.OutsetaWebhookSecret,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// positionLabels maps stored position codes to the labels the clients
// display. Unrecognized codes fall back to "Unknown Position".
var positionLabels = map[string]string{
	"P":      "Pitcher",
	"RHP":    "Right-Handed Pitcher",
	"LHP":    "Left-Handed Pitcher",
	"C":      "Catcher",
	"1B":     "First Baseman",
	"2B":     "Second Baseman",
	"SS":     "Shortstop",
	"3B":     "Third Baseman",
	"LF":     "Left Fielder",
	"CF":     "Center Fielder",
	"RF":     "Right Fielder",
	"DH":     "Designated Hitter",
	"INF":    "Infielders",
	"OF":     "Outfielders",
	"OF RHP": "Outfielder Right-Handed Pitcher",
}

func positionLabel(code string) string {
	if label, ok := positionLabels[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return label
	}
	return "Unknown Position"
}

// resolveMediaURL prefixes a stored media path with the configured base URL.
// Already-absolute URLs and empty paths pass through untouched.
func resolveMediaURL(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if baseURL == "" {
		return path
	}
	return baseURL + "/" + strings.TrimLeft(path, "/")
}

type playerDTO struct {
	ID                  string               `json:"id"`
	FirstName           string               `json:"firstName"`
	LastName            string               `json:"lastName"`
	FullName            string               `json:"fullName"`
	ProfileImage        string               `json:"profileImage,omitempty"`
	Position            string               `json:"position,omitempty"`
	PositionLabel       string               `json:"positionLabel"`
	Class               string               `json:"class,omitempty"`
	TeamID              string               `json:"teamId,omitempty"`
	JerseyNumber        string               `json:"jerseyNumber,omitempty"`
	Height              string               `json:"height,omitempty"`
	Weight              string               `json:"weight,omitempty"`
	BatsThrows          string               `json:"batsThrows,omitempty"`
	Hometown            string               `json:"hometown,omitempty"`
	HighSchool          string               `json:"highSchool,omitempty"`
	State               string               `json:"state,omitempty"`
	CommitmentStatus    string               `json:"commitmentStatus,omitempty"`
	ProfileCompleteness int                  `json:"profileCompleteness"`
	AwardsAchievements  []string             `json:"awardsAchievements,omitempty"`
	Videos              []videoDTO           `json:"videos,omitempty"`
	CoachRecommendation *documentDTO         `json:"coachRecommendation,omitempty"`
	AcademicInfo        *documentDTO         `json:"academicInfo,omitempty"`
	BattingStats        []battingRecordDTO   `json:"battingStats,omitempty"`
	PitchingStats       []pitchingRecordDTO  `json:"pitchingStats,omitempty"`
	FieldingStats       []fieldingRecordDTO  `json:"fieldingStats,omitempty"`
}

type videoDTO struct {
	ID         string  `json:"id"`
	URL        string  `json:"url"`
	Title      string  `json:"title,omitempty"`
	UploadedAt string  `json:"uploadedAt,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
}

type documentDTO struct {
	URL        string `json:"url"`
	Filename   string `json:"filename,omitempty"`
	UploadedAt string `json:"uploadedAt,omitempty"`
}

type battingRecordDTO struct {
	SeasonYear         string  `json:"seasonYear"`
	Latest             bool    `json:"latest"`
	GamesPlayed        int     `json:"gamesPlayed"`
	AtBats             int     `json:"atBats"`
	Runs               int     `json:"runs"`
	Hits               int     `json:"hits"`
	Doubles            int     `json:"doubles"`
	Triples            int     `json:"triples"`
	HomeRuns           int     `json:"homeRuns"`
	RBI                int     `json:"rbi"`
	Walks              int     `json:"walks"`
	Strikeouts         int     `json:"strikeouts"`
	StolenBases        int     `json:"stolenBases"`
	BattingAverage     float64 `json:"battingAverage"`
	OnBasePercentage   float64 `json:"onBasePercentage"`
	SluggingPercentage float64 `json:"sluggingPercentage"`
}

type pitchingRecordDTO struct {
	SeasonYear        string  `json:"seasonYear"`
	Latest            bool    `json:"latest"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	ERA               float64 `json:"era"`
	GamesPitched      int     `json:"gamesPitched"`
	Saves             int     `json:"saves"`
	InningsPitched    float64 `json:"inningsPitched"`
	HitsAllowed       int     `json:"hitsAllowed"`
	WalksAllowed      int     `json:"walksAllowed"`
	StrikeoutsPitched int     `json:"strikeoutsPitched"`
}

type fieldingRecordDTO struct {
	SeasonYear         string  `json:"seasonYear"`
	Latest             bool    `json:"latest"`
	Putouts            int     `json:"putouts"`
	Assists            int     `json:"assists"`
	Errors             int     `json:"errors"`
	FieldingPercentage float64 `json:"fieldingPercentage"`
	DoublePlays        int     `json:"doublePlays"`
}

func (h *Handler) playerToDTO(v user.User) playerDTO {
	out := playerDTO{
		ID:                  v.ID,
		FirstName:           v.FirstName,
		LastName:            v.LastName,
		FullName:            v.FullName(),
		ProfileImage:        resolveMediaURL(h.mediaBaseURL, v.ProfileImage),
		Position:            v.Position,
		PositionLabel:       positionLabel(v.Position),
		Class:               v.LatestSeasonLabel(),
		TeamID:              v.TeamID,
		JerseyNumber:        v.JerseyNumber,
		Height:              v.Height,
		Weight:              v.Weight,
		BatsThrows:          v.BatsThrows,
		Hometown:            v.Hometown,
		HighSchool:          v.HighSchool,
		State:               v.State,
		CommitmentStatus:    string(v.CommitmentStatus),
		ProfileCompleteness: v.ProfileCompleteness,
		AwardsAchievements:  v.AwardsAchievements,
	}

	for _, video := range v.Videos {
		out.Videos = append(out.Videos, videoDTO{
			ID:         video.ID,
			URL:        resolveMediaURL(h.mediaBaseURL, video.URL),
			Title:      video.Title,
			UploadedAt: formatTime(video.UploadedAt),
			Duration:   video.Duration,
		})
	}
	if v.CoachRecommendation != nil {
		out.CoachRecommendation = h.documentToDTO(*v.CoachRecommendation)
	}
	if v.AcademicInfo != nil {
		out.AcademicInfo = h.documentToDTO(*v.AcademicInfo)
	}

	for _, rec := range v.BattingStats {
		out.BattingStats = append(out.BattingStats, battingToDTO(rec))
	}
	for _, rec := range v.PitchingStats {
		out.PitchingStats = append(out.PitchingStats, pitchingToDTO(rec))
	}
	for _, rec := range v.FieldingStats {
		out.FieldingStats = append(out.FieldingStats, fieldingToDTO(rec))
	}

	return out
}

func (h *Handler) documentToDTO(d user.Document) *documentDTO {
	return &documentDTO{
		URL:        resolveMediaURL(h.mediaBaseURL, d.URL),
		Filename:   d.Filename,
		UploadedAt: formatTime(d.UploadedAt),
	}
}

func (h *Handler) playersToDTO(players []user.User) []playerDTO {
	out := make([]playerDTO, 0, len(players))
	for _, p := range players {
		out = append(out, h.playerToDTO(p))
	}
	return out
}

func battingToDTO(rec user.BattingRecord) battingRecordDTO {
	return battingRecordDTO{
		SeasonYear:         rec.SeasonYear,
		Latest:             rec.Latest,
		GamesPlayed:        rec.GamesPlayed,
		AtBats:             rec.AtBats,
		Runs:               rec.Runs,
		Hits:               rec.Hits,
		Doubles:            rec.Doubles,
		Triples:            rec.Triples,
		HomeRuns:           rec.HomeRuns,
		RBI:                rec.RBI,
		Walks:              rec.Walks,
		Strikeouts:         rec.Strikeouts,
		StolenBases:        rec.StolenBases,
		BattingAverage:     rec.BattingAverage,
		OnBasePercentage:   rec.OnBasePercentage,
		SluggingPercentage: rec.SluggingPercentage,
	}
}

func pitchingToDTO(rec user.PitchingRecord) pitchingRecordDTO {
	return pitchingRecordDTO{
		SeasonYear:        rec.SeasonYear,
		Latest:            rec.Latest,
		Wins:              rec.Wins,
		Losses:            rec.Losses,
		ERA:               rec.ERA,
		GamesPitched:      rec.GamesPitched,
		Saves:             rec.Saves,
		InningsPitched:    rec.InningsPitched,
		HitsAllowed:       rec.HitsAllowed,
		WalksAllowed:      rec.WalksAllowed,
		StrikeoutsPitched: rec.StrikeoutsPitched,
	}
}

func fieldingToDTO(rec user.FieldingRecord) fieldingRecordDTO {
	return fieldingRecordDTO{
		SeasonYear:         rec.SeasonYear,
		Latest:             rec.Latest,
		Putouts:            rec.Putouts,
		Assists:            rec.Assists,
		Errors:             rec.Errors,
		FieldingPercentage: rec.FieldingPercentage,
		DoublePlays:        rec.DoublePlays,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil {
		return 0
	}
	return v
}
