// Package riotapi is a typed HTTP client for the Riot Games API with
// per-host rate limiting and platform vs regional routing.
package riotapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// APIError is a non-2xx response from the Riot API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("riot api status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a Riot API 404. The spectator endpoint
// answers 404 for players who are simply not in a game.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// RequestObserver receives one callback per upstream request, after the
// response arrives. Route is the URL path with identifiers intact.
type RequestObserver func(ctx context.Context, route string, statusCode int, duration time.Duration)

// Client is the Riot API surface the stats module consumes.
type Client interface {
	AccountByRiotID(ctx context.Context, gameName, tagLine string) (*Account, error)
	AccountByPUUID(ctx context.Context, puuid string) (*Account, error)
	SummonerByPUUID(ctx context.Context, puuid string) (*Summoner, error)
	LeagueEntriesBySummoner(ctx context.Context, summonerID string) ([]LeagueEntry, error)
	MatchIDsByPUUID(ctx context.Context, puuid string, start, count int) ([]string, error)
	MatchByID(ctx context.Context, matchID string) (*Match, error)
	ActiveGameBySummoner(ctx context.Context, summonerID string) (*ActiveGame, error)
	ChampionMasteriesByPUUID(ctx context.Context, puuid string) ([]ChampionMastery, error)
	ChampionName(ctx context.Context, championID int64) (string, error)
}

// platformAliases accepts the short region names players actually type.
var platformAliases = map[string]string{
	"na": "na1", "na1": "na1",
	"br": "br1", "br1": "br1",
	"lan": "la1", "la1": "la1",
	"las": "la2", "la2": "la2",
	"oce": "oc1", "oc1": "oc1",
	"euw": "euw1", "euw1": "euw1",
	"eune": "eun1", "eun1": "eun1",
	"tr": "tr1", "tr1": "tr1",
	"ru": "ru",
	"kr": "kr",
	"jp": "jp1", "jp1": "jp1",
}

// regionByPlatform maps a platform to its regional routing value for the
// account and match endpoints.
var regionByPlatform = map[string]string{
	"na1": "americas", "br1": "americas", "la1": "americas", "la2": "americas",
	"euw1": "europe", "eun1": "europe", "tr1": "europe", "ru": "europe",
	"kr": "asia", "jp1": "asia",
	"oc1": "sea",
}

// NormalizePlatform canonicalizes a player-typed region into a platform
// routing value, defaulting to na1 for anything unrecognized.
func NormalizePlatform(platform string) string {
	if p, ok := platformAliases[strings.ToLower(strings.TrimSpace(platform))]; ok {
		return p
	}
	return "na1"
}

// Config configures an HTTPClient. The base URL fields exist for tests and
// default to the public Riot hosts derived from Platform.
type Config struct {
	APIKey        string
	Platform      string
	Timeout       time.Duration
	RatePerSecond float64
	RateBurst     int

	PlatformBaseURL string
	RegionalBaseURL string
	DDragonBaseURL  string
}

// HTTPClient implements Client against the live Riot API.
type HTTPClient struct {
	apiKey       string
	platformBase string
	regionalBase string
	ddragonBase  string
	http         *http.Client
	observer     RequestObserver
	sleep        func(context.Context, time.Duration) error

	ratePerSec float64
	burst      int
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter

	championMu    sync.Mutex
	championNames map[int64]string
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// New builds an HTTPClient for the configured platform. The observer may be
// nil.
func New(cfg Config, observer RequestObserver) *HTTPClient {
	platform := NormalizePlatform(cfg.Platform)
	region := regionByPlatform[platform]
	if region == "" {
		region = "americas"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	perSec := cfg.RatePerSecond
	if perSec <= 0 {
		perSec = 20
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 20
	}

	c := &HTTPClient{
		apiKey:       cfg.APIKey,
		platformBase: cfg.PlatformBaseURL,
		regionalBase: cfg.RegionalBaseURL,
		ddragonBase:  cfg.DDragonBaseURL,
		http:         &http.Client{Timeout: timeout},
		observer:     observer,
		sleep:        ctxSleep,
		ratePerSec:   perSec,
		burst:        burst,
		limiters:     make(map[string]*rate.Limiter),
	}
	if c.platformBase == "" {
		c.platformBase = fmt.Sprintf("https://%s.api.riotgames.com", platform)
	}
	if c.regionalBase == "" {
		c.regionalBase = fmt.Sprintf("https://%s.api.riotgames.com", region)
	}
	if c.ddragonBase == "" {
		c.ddragonBase = "https://ddragon.leagueoflegends.com"
	}
	return c
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) limiterFor(rawURL string) *rate.Limiter {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.ratePerSec), c.burst)
		c.limiters[host] = l
	}
	return l
}

func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return time.Second
	}
	return time.Duration(secs) * time.Second
}

// getJSON performs one GET with rate limiting and a single retry on 429.
func (c *HTTPClient) getJSON(ctx context.Context, rawURL string, query url.Values, out any) error {
	for attempt := 0; ; attempt++ {
		if err := c.limiterFor(rawURL).Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		if len(query) > 0 {
			req.URL.RawQuery = query.Encode()
		}
		if c.apiKey != "" {
			req.Header.Set("X-Riot-Token", c.apiKey)
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if c.observer != nil {
			c.observer(ctx, req.URL.Path, resp.StatusCode, time.Since(start))
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt == 0 {
			if err := c.sleep(ctx, retryAfter(resp.Header)); err != nil {
				return err
			}
			continue
		}
		if readErr != nil {
			return readErr
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}
		if out == nil {
			return nil
		}
		return json.Unmarshal(body, out)
	}
}

// AccountByRiotID resolves a GameName#TagLine pair to an account.
func (c *HTTPClient) AccountByRiotID(ctx context.Context, gameName, tagLine string) (*Account, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.regionalBase, url.PathEscape(gameName), url.PathEscape(tagLine))
	var out Account
	if err := c.getJSON(ctx, u, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AccountByPUUID resolves a PUUID back to its current Riot ID.
func (c *HTTPClient) AccountByPUUID(ctx context.Context, puuid string) (*Account, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-puuid/%s", c.regionalBase, url.PathEscape(puuid))
	var out Account
	if err := c.getJSON(ctx, u, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SummonerByPUUID fetches the platform summoner record for a PUUID.
func (c *HTTPClient) SummonerByPUUID(ctx context.Context, puuid string) (*Summoner, error) {
	u := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s", c.platformBase, url.PathEscape(puuid))
	var out Summoner
	if err := c.getJSON(ctx, u, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LeagueEntriesBySummoner fetches the ranked standings for a summoner.
func (c *HTTPClient) LeagueEntriesBySummoner(ctx context.Context, summonerID string) ([]LeagueEntry, error) {
	u := fmt.Sprintf("%s/lol/league/v4/entries/by-summoner/%s", c.platformBase, url.PathEscape(summonerID))
	var out []LeagueEntry
	if err := c.getJSON(ctx, u, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MatchIDsByPUUID lists recent match IDs, newest first.
func (c *HTTPClient) MatchIDsByPUUID(ctx context.Context, puuid string, start, count int) ([]string, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids", c.regionalBase, url.PathEscape(puuid))
	q := url.Values{}
	q.Set("start", strconv.Itoa(start))
	q.Set("count", strconv.Itoa(count))
	var out []string
	if err := c.getJSON(ctx, u, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MatchByID fetches the full detail of one finished match.
func (c *HTTPClient) MatchByID(ctx context.Context, matchID string) (*Match, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.regionalBase, url.PathEscape(matchID))
	var out Match
	if err := c.getJSON(ctx, u, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActiveGameBySummoner fetches the summoner's live game. A 404 means the
// player is not in a game; callers check with IsNotFound.
func (c *HTTPClient) ActiveGameBySummoner(ctx context.Context, summonerID string) (*ActiveGame, error) {
	u := fmt.Sprintf("%s/lol/spectator/v4/active-games/by-summoner/%s", c.platformBase, url.PathEscape(summonerID))
	var out ActiveGame
	if err := c.getJSON(ctx, u, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChampionMasteriesByPUUID fetches all champion masteries, highest first.
func (c *HTTPClient) ChampionMasteriesByPUUID(ctx context.Context, puuid string) ([]ChampionMastery, error) {
	u := fmt.Sprintf("%s/lol/champion-mastery/v4/champion-masteries/by-puuid/%s", c.platformBase, url.PathEscape(puuid))
	var out []ChampionMastery
	if err := c.getJSON(ctx, u, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChampionName resolves a champion ID through the Data Dragon catalog,
// fetching and caching it on first use.
func (c *HTTPClient) ChampionName(ctx context.Context, championID int64) (string, error) {
	c.championMu.Lock()
	defer c.championMu.Unlock()

	if c.championNames == nil {
		var versions []string
		if err := c.getJSON(ctx, c.ddragonBase+"/api/versions.json", nil, &versions); err != nil {
			return "", fmt.Errorf("failed to fetch ddragon versions: %w", err)
		}
		if len(versions) == 0 {
			return "", errors.New("ddragon returned no versions")
		}

		var catalog championCatalog
		u := fmt.Sprintf("%s/cdn/%s/data/en_US/champion.json", c.ddragonBase, versions[0])
		if err := c.getJSON(ctx, u, nil, &catalog); err != nil {
			return "", fmt.Errorf("failed to fetch champion catalog: %w", err)
		}

		names := make(map[int64]string, len(catalog.Data))
		for _, ch := range catalog.Data {
			key, err := strconv.ParseInt(ch.Key, 10, 64)
			if err != nil {
				continue
			}
			names[key] = ch.Name
		}
		c.championNames = names
	}

	if name, ok := c.championNames[championID]; ok {
		return name, nil
	}
	return fmt.Sprintf("Champion %d", championID), nil
}
