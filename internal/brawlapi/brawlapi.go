package brawlapi

import (
	"clubbot/internal/club"
	"clubbot/internal/common"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Default locations of the official API and of BrawlAPI
const OFFICIAL_URL = "https://api.brawlstars.com"
const BRAWLAPI_URL = "https://api.brawlapi.com"

// Routes inside the official API
const ROUTE_CLUB_MEMBERS = "/v1/clubs/%s/members"
const ROUTE_BATTLE_LOG = "/v1/players/%s/battlelog"
const ROUTE_PLAYER = "/v1/players/%s"

// Route inside BrawlAPI
const ROUTE_CLUB_LOG = "/v1/clublog/%s"

// Where a club page can be looked up by people
const CLUB_STATS_URL = "https://brawlify.com/stats/club/%s"

type Config struct {
	OfficialURL  string
	BrawlapiURL  string
	Key          string
	ClubTag      string
	Restrictions []common.Restriction
	Backoff      time.Duration // How long to stop requesting after a rate limit answer
}

type Api struct {
	official    *common.Proxy
	brawlapi    *common.Proxy
	officialURL string
	brawlapiURL string
	clubTag     string
	logger      zerolog.Logger
}

func NewApi(config Config, client *http.Client, clock common.Clock, logger zerolog.Logger) *Api {

	officialURL := strings.TrimSuffix(config.OfficialURL, "/")
	if officialURL == "" {
		officialURL = OFFICIAL_URL
	}
	brawlapiURL := strings.TrimSuffix(config.BrawlapiURL, "/")
	if brawlapiURL == "" {
		brawlapiURL = BRAWLAPI_URL
	}

	backoff := config.Backoff
	if backoff <= 0 {
		backoff = time.Minute
	}
	officialLimiter := common.NewRateLimiter(config.Restrictions, backoff, clock, logger)
	brawlapiLimiter := common.NewRateLimiter(config.Restrictions, backoff, clock, logger)

	return &Api{
		official:    common.NewProxy(map[string]string{"Authorization": "Bearer " + config.Key}, client, officialLimiter, logger),
		brawlapi:    common.NewProxy(nil, client, brawlapiLimiter, logger),
		officialURL: officialURL,
		brawlapiURL: brawlapiURL,
		clubTag:     strings.TrimPrefix(config.ClubTag, "#"),
		logger:      logger,
	}
}

func (api *Api) ClubTag() string {
	return api.clubTag
}

// Fetch the current member list of the club, in club order
func (api *Api) FetchRoster(ctx context.Context) ([]club.RosterEntry, error) {

	// Request
	url := api.officialURL + fmt.Sprintf(ROUTE_CLUB_MEMBERS, escapeTag(api.clubTag))
	data, err := api.official.Request(ctx, "roster", url, true)
	if err != nil {
		return nil, err
	}

	// Decode
	roster, err := UnmarshalRoster(data)
	if err != nil {
		return nil, malformed(url, err)
	}
	api.logger.Debug().Int("members", len(roster)).Msg("Fetched club roster")
	return roster, nil
}

// Fetch the recent matches of a player
func (api *Api) FetchMatchLog(ctx context.Context, tag string) ([]club.MatchEntry, error) {

	// Request
	url := api.officialURL + fmt.Sprintf(ROUTE_BATTLE_LOG, escapeTag(tag))
	data, err := api.official.Request(ctx, "battlelog", url, true)
	if err != nil {
		return nil, err
	}

	// Decode
	matches, err := UnmarshalBattleLog(data)
	if err != nil {
		return nil, malformed(url, err)
	}
	return matches, nil
}

func (api *Api) FetchPlayerName(ctx context.Context, tag string) (string, error) {

	// Request
	url := api.officialURL + fmt.Sprintf(ROUTE_PLAYER, escapeTag(tag))
	data, err := api.official.Request(ctx, "player", url, false)
	if err != nil {
		return "", err
	}

	// Decode
	name, err := UnmarshalPlayerName(data)
	if err != nil {
		return "", malformed(url, err)
	}
	return name, nil
}

// Fetch the club summary together with its history of changes
func (api *Api) FetchClubLog(ctx context.Context) (ClubLog, error) {

	// Request
	url := api.brawlapiURL + fmt.Sprintf(ROUTE_CLUB_LOG, api.clubTag)
	data, err := api.brawlapi.Request(ctx, "clublog", url, true)
	if err != nil {
		return ClubLog{}, err
	}

	// Decode
	log, err := UnmarshalClubLog(data)
	if err != nil {
		return ClubLog{}, malformed(url, err)
	}
	api.logger.Debug().Int("entries", len(log.History)).Msg("Fetched club log")
	return log, nil
}

func escapeTag(tag string) string {
	return url.PathEscape("#" + strings.TrimPrefix(tag, "#"))
}

func malformed(url string, err error) error {
	return &common.UpstreamAPIError{URL: url, StatusCode: common.OK, Err: fmt.Errorf("malformed response: %w", err)}
}
