package models

import (
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Player is one seat at the table. Identity is the name, compared
// case-insensitively; Image is an opaque data-URL blob kept in the
// saved-players registry.
type Player struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// UnmarshalJSON also accepts the legacy on-disk shape where a player was a
// bare name string. The upgrade happens here, at the decode boundary, so
// game logic only ever sees the record form.
func (p *Player) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		p.Name = name
		p.Image = ""
		return nil
	}
	type playerRecord Player
	var rec playerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*p = Player(rec)
	return nil
}

// Round is one completed cycle of score entry. Scores map player name to
// the raw string the user typed; parsing to int happens on aggregation.
type Round struct {
	Round     int               `json:"round"`
	Scores    map[string]string `json:"scores"`
	Timestamp time.Time         `json:"timestamp"`
}

// GameSession is the active game record, and, once completed, a history
// entry frozen with EndTime/Winner/FinalScores attached.
type GameSession struct {
	ID                    int64          `json:"id"`
	Name                  string         `json:"name"`
	Players               []Player       `json:"players"`
	Rounds                []Round        `json:"rounds"`
	StartTime             time.Time      `json:"startTime"`
	EndTime               *time.Time     `json:"endTime,omitempty"`
	Status                string         `json:"status"`
	CurrentPlayerIndex    int            `json:"currentPlayerIndex"`
	TimerDuration         int            `json:"timerDuration"`
	OriginalTimerDuration int            `json:"originalTimerDuration"`
	MaxExtensions         int            `json:"maxExtensions"`
	PlayerExtensions      map[string]int `json:"playerExtensions"`
	TTSLanguage           string         `json:"ttsLanguage,omitempty"`
	Winner                string         `json:"winner,omitempty"`
	FinalScores           map[string]int `json:"finalScores,omitempty"`
}

// RateLimiterWithTime represents a rate limiter entry for a client IP.
type RateLimiterWithTime struct {
	Limiter    *rate.Limiter
	LastAccess time.Time
}

// App carries process-wide infrastructure config and the rate limiter
// table. Game state lives in the game.Manager, not here.
type App struct {
	IsProduction   bool
	StartTime      time.Time
	ExternalURL    string
	CookieMaxAge   time.Duration
	StaticCacheAge time.Duration
	RateLimitRPS   int
	RateLimitBurst int
	RateLimiterTTL time.Duration
	LimiterMap     map[string]*RateLimiterWithTime
	LimiterMutex   sync.RWMutex
}
