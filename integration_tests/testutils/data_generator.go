package testutils

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	accountsdb "github.com/Five-Stack-Club/rift-bot/app/modules/accounts/infrastructure/repositories"
	lobbydomain "github.com/Five-Stack-Club/rift-bot/app/modules/lobby/domain"
	statsdb "github.com/Five-Stack-Club/rift-bot/app/modules/stats/infrastructure/repositories"
	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	faker := gofakeit.New(uint64(s))

	return &TestDataGenerator{
		faker: faker,
		seed:  s,
	}
}

var regions = []string{"na1", "euw1", "eun1", "kr", "br1"}

// GenerateDiscordID creates a snowflake-shaped Discord ID.
func (g *TestDataGenerator) GenerateDiscordID() sharedtypes.DiscordID {
	return sharedtypes.DiscordID(g.faker.Numerify("##################"))
}

// GeneratePUUID creates a string shaped like a Riot PUUID (78 url-safe chars).
func (g *TestDataGenerator) GeneratePUUID() sharedtypes.PUUID {
	return sharedtypes.PUUID(g.faker.Regex("[A-Za-z0-9_-]{78}"))
}

// GenerateRiotID creates a gameName/tagLine pair.
func (g *TestDataGenerator) GenerateRiotID() (string, string) {
	gameName := g.faker.Gamertag()
	tagLine := strings.ToUpper(g.faker.LetterN(3))
	return gameName, tagLine
}

// GenerateUsers creates a specified number of test users
func (g *TestDataGenerator) GenerateUsers(count int) []accountsdb.User {
	users := make([]accountsdb.User, count)

	for i := 0; i < count; i++ {
		users[i] = accountsdb.User{
			UserID:   g.GenerateDiscordID(),
			Username: g.faker.Username(),
		}
	}

	return users
}

// GenerateSummonerLink creates a verified Riot link for the given user.
func (g *TestDataGenerator) GenerateSummonerLink(userID sharedtypes.DiscordID) accountsdb.SummonerLink {
	gameName, tagLine := g.GenerateRiotID()

	return accountsdb.SummonerLink{
		UserID:   userID,
		PUUID:    g.GeneratePUUID(),
		GameName: gameName,
		TagLine:  tagLine,
		Region:   regions[g.faker.Number(0, len(regions)-1)],
	}
}

// GenerateCandidates creates lobby candidates with random role preferences.
// Ratings land in the range real ranked play produces.
func (g *TestDataGenerator) GenerateCandidates(count int) []lobbydomain.Candidate {
	candidates := make([]lobbydomain.Candidate, count)

	for i := 0; i < count; i++ {
		roleCount := g.faker.Number(1, 3)
		roles := lobbydomain.RoleSet(0)
		for len(roles.Roles()) < roleCount {
			roles = roles.With(lobbydomain.AllRoles[g.faker.Number(0, lobbydomain.NumRoles-1)])
		}

		candidates[i] = lobbydomain.Candidate{
			ID:     g.GenerateDiscordID(),
			Roles:  roles,
			Rating: g.faker.Number(400, 2800),
		}
	}

	return candidates
}

// GenerateFullLobby creates exactly ten candidates covering every role twice,
// so a strict team assignment always exists.
func (g *TestDataGenerator) GenerateFullLobby() []lobbydomain.Candidate {
	candidates := make([]lobbydomain.Candidate, 0, lobbydomain.MaxActive)

	for team := 0; team < 2; team++ {
		for _, role := range lobbydomain.AllRoles {
			candidates = append(candidates, lobbydomain.Candidate{
				ID:     g.GenerateDiscordID(),
				Roles:  lobbydomain.NewRoleSet(role),
				Rating: g.faker.Number(400, 2800),
			})
		}
	}

	g.faker.ShuffleAnySlice(candidates)
	return candidates
}

// GenerateMatch creates a cached match row whose payload names the given
// players. Extra players are faked up to a full lobby of ten.
func (g *TestDataGenerator) GenerateMatch(puuids ...sharedtypes.PUUID) statsdb.Match {
	region := regions[g.faker.Number(0, len(regions)-1)]
	matchID := fmt.Sprintf("%s_%s", strings.ToUpper(region), g.faker.Numerify("##########"))

	players := make([]string, 0, 10)
	for _, p := range puuids {
		players = append(players, string(p))
	}
	for len(players) < 10 {
		players = append(players, string(g.GeneratePUUID()))
	}

	gameCreation := g.faker.DateRange(time.Now().AddDate(0, -1, 0), time.Now()).UnixMilli()

	payload, _ := json.Marshal(map[string]any{
		"metadata": map[string]any{
			"matchId":      matchID,
			"participants": players,
		},
		"info": map[string]any{
			"gameCreation": gameCreation,
			"gameDuration": g.faker.Number(1200, 3000),
			"queueId":      420,
		},
	})

	return statsdb.Match{
		MatchID:      matchID,
		Region:       region,
		APIVersion:   "5",
		Players:      players,
		GameCreation: gameCreation,
		MatchData:    payload,
	}
}

// GenerateTestData creates a linked set of users, riot links, and cached matches
func (g *TestDataGenerator) GenerateTestData(userCount, matchCount int) ([]accountsdb.User, []accountsdb.SummonerLink, []statsdb.Match) {
	users := g.GenerateUsers(userCount)

	links := make([]accountsdb.SummonerLink, len(users))
	for i, u := range users {
		links[i] = g.GenerateSummonerLink(u.UserID)
	}

	matches := make([]statsdb.Match, matchCount)
	for i := 0; i < matchCount; i++ {
		// Each match includes a couple of the linked players
		first := g.faker.Number(0, len(links)-1)
		second := g.faker.Number(0, len(links)-1)
		matches[i] = g.GenerateMatch(links[first].PUUID, links[second].PUUID)
	}

	return users, links, matches
}
