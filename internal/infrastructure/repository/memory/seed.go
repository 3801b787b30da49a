package memory

import (
	"github.com/nextinning/recruiting-api/internal/domain/team"
	"github.com/nextinning/recruiting-api/internal/domain/user"
)

const (
	TeamIDAustinSliders  = "tx-austin-sliders"
	TeamIDDallasLonghorn = "tx-dallas-longhorns"
	TeamIDHoustonHeat    = "tx-houston-heat"
)

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: TeamIDAustinSliders, Name: "Austin Sliders", Location: "Austin, TX", Division: "6A", Region: "Central", IsActive: true},
		{ID: TeamIDDallasLonghorn, Name: "Dallas Longhorns", Location: "Dallas, TX", Division: "5A", Region: "North", IsActive: true},
		{ID: TeamIDHoustonHeat, Name: "Houston Heat", Location: "Houston, TX", Division: "6A", Region: "Gulf", IsActive: true},
	}
}

func SeedPlayers() []user.User {
	return []user.User{
		{
			ID: "player-ramirez", FirstName: "Diego", LastName: "Ramirez",
			Role: user.RolePlayer, RegistrationStatus: user.RegistrationApproved, IsActive: true,
			TeamID: TeamIDAustinSliders, Position: "SS", CommitmentStatus: user.CommitmentUncommitted,
			ProfileCompleteness: 91,
			BattingStats: []user.BattingRecord{
				{SeasonYear: "2025", Latest: true, GamesPlayed: 32, AtBats: 110, Hits: 44, HomeRuns: 6, RBI: 31, BattingAverage: 0.400, OnBasePercentage: 0.472, SluggingPercentage: 0.618, StolenBases: 14},
				{SeasonYear: "2024", GamesPlayed: 28, AtBats: 96, Hits: 31, HomeRuns: 3, RBI: 19, BattingAverage: 0.323, OnBasePercentage: 0.401, SluggingPercentage: 0.490, StolenBases: 9},
			},
			FieldingStats: []user.FieldingRecord{
				{SeasonYear: "2025", Latest: true, Putouts: 48, Assists: 92, Errors: 5, FieldingPercentage: 0.966, DoublePlays: 18},
			},
		},
		{
			ID: "player-okafor", FirstName: "Chuka", LastName: "Okafor",
			Role: user.RolePlayer, RegistrationStatus: user.RegistrationApproved, IsActive: true,
			TeamID: TeamIDDallasLonghorn, Position: "P", CommitmentStatus: user.CommitmentUncommitted,
			ProfileCompleteness: 83,
			PitchingStats: []user.PitchingRecord{
				{SeasonYear: "2025", Latest: true, Wins: 8, Losses: 1, ERA: 1.42, GamesPitched: 12, InningsPitched: 68.2, StrikeoutsPitched: 97, WalksAllowed: 18, HitsAllowed: 41},
				{SeasonYear: "2024", Wins: 5, Losses: 3, ERA: 2.87, GamesPitched: 10, InningsPitched: 52.1, StrikeoutsPitched: 61, WalksAllowed: 24, HitsAllowed: 46},
			},
		},
		{
			ID: "player-whitfield", FirstName: "Mason", LastName: "Whitfield",
			Role: user.RolePlayer, RegistrationStatus: user.RegistrationApproved, IsActive: true,
			TeamID: TeamIDHoustonHeat, Position: "CF", CommitmentStatus: user.CommitmentCommitted,
			ProfileCompleteness: 100,
			BattingStats: []user.BattingRecord{
				{SeasonYear: "2025", Latest: true, GamesPlayed: 30, AtBats: 104, Hits: 38, HomeRuns: 9, RBI: 35, BattingAverage: 0.365, OnBasePercentage: 0.441, SluggingPercentage: 0.663, StolenBases: 11},
			},
			FieldingStats: []user.FieldingRecord{
				{SeasonYear: "2025", Latest: true, Putouts: 71, Assists: 4, Errors: 1, FieldingPercentage: 0.987, DoublePlays: 1},
			},
		},
	}
}
