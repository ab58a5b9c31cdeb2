// Package handlers is the HTTP surface of the tracker. Handlers decode
// requests, call into the game manager and re-render nothing themselves:
// clients follow state over the websocket, so mutations answer with a
// fresh snapshot and an error code when the operation was refused.
package handlers

import (
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	constants "github.com/christophrus/rummikub-tracker/internal/constants"
	game "github.com/christophrus/rummikub-tracker/internal/game"
	history "github.com/christophrus/rummikub-tracker/internal/history"
	models "github.com/christophrus/rummikub-tracker/internal/models"
	realtime "github.com/christophrus/rummikub-tracker/internal/realtime"
	storage "github.com/christophrus/rummikub-tracker/internal/storage"
	util "github.com/christophrus/rummikub-tracker/internal/util"
)

// Env bundles what the handlers need. Game state is only ever touched
// through the manager; Store is used directly for preferences, which the
// manager does not own.
type Env struct {
	App     *models.App
	Manager *game.Manager
	Store   *storage.Adapter
	Events  *realtime.Broadcaster
}

func NewEnv(app *models.App, mgr *game.Manager, store *storage.Adapter, events *realtime.Broadcaster) *Env {
	return &Env{App: app, Manager: mgr, Store: store, Events: events}
}

func (e *Env) HomeHandler(c *gin.Context) {
	csrfToken, _ := c.Cookie("csrf_token")
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title":      "Rummikub Score Tracker",
		"csrf_token": csrfToken,
		"shareURL":   e.shareURL(c),
	})
}

// StateHandler returns the full snapshot a client needs to render from
// scratch; the websocket pushes the same shape on every change.
func (e *Env) StateHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state":        e.Manager.Snapshot(),
		"savedPlayers": e.Manager.SavedPlayers(),
	})
}

type beginGameRequest struct {
	Players       []models.Player `json:"players"`
	Name          string          `json:"name"`
	TimerDuration int             `json:"timerDuration"`
	MaxExtensions int             `json:"maxExtensions"`
	TTSLanguage   string          `json:"ttsLanguage"`
}

func (e *Env) BeginGameHandler(c *gin.Context) {
	var req beginGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := e.Manager.BeginGame(req.Players, req.Name, req.TimerDuration, req.MaxExtensions, req.TTSLanguage); err != nil {
		respondError(c, err)
		return
	}
	e.ok(c)
}

type starterRequest struct {
	Index int `json:"index"`
}

func (e *Env) SelectStarterHandler(c *gin.Context) {
	var req starterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	g, err := e.Manager.SelectStartingPlayer(req.Index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": g, "state": e.Manager.Snapshot()})
}

func (e *Env) CancelPendingHandler(c *gin.Context) {
	e.Manager.CancelPending()
	e.ok(c)
}

func (e *Env) NextPlayerHandler(c *gin.Context) {
	e.Manager.NextPlayer()
	e.ok(c)
}

func (e *Env) ExtendTimerHandler(c *gin.Context) {
	e.Manager.ExtendTimer()
	e.ok(c)
}

func (e *Env) PauseTimerHandler(c *gin.Context) {
	e.Manager.PauseTimer()
	e.ok(c)
}

func (e *Env) ResumeTimerHandler(c *gin.Context) {
	e.Manager.ResumeTimer()
	e.ok(c)
}

func (e *Env) ResetTimerHandler(c *gin.Context) {
	e.Manager.ResetTimer()
	e.ok(c)
}

type durationRequest struct {
	Seconds int `json:"seconds"`
}

func (e *Env) TimerDurationHandler(c *gin.Context) {
	var req durationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e.Manager.UpdateTimerDuration(req.Seconds)
	e.ok(c)
}

func (e *Env) DeclareWinnerHandler(c *gin.Context) {
	e.Manager.DeclareWinner()
	e.ok(c)
}

func (e *Env) CancelWinnerHandler(c *gin.Context) {
	e.Manager.CancelWinner()
	e.ok(c)
}

type scoreRequest struct {
	Player string `json:"player"`
	Score  string `json:"score"`
}

func (e *Env) UpdateScoreHandler(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e.Manager.UpdateRoundScore(req.Player, req.Score)
	e.ok(c)
}

func (e *Env) SaveRoundHandler(c *gin.Context) {
	if err := e.Manager.SaveRound(); err != nil {
		respondError(c, err)
		return
	}
	e.ok(c)
}

func (e *Env) PastScoreHandler(c *gin.Context) {
	roundIndex, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, err)
		return
	}
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := e.Manager.UpdatePastScore(roundIndex, req.Player, req.Score); err != nil {
		respondError(c, err)
		return
	}
	e.ok(c)
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (e *Env) ReorderHandler(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e.Manager.ReorderGamePlayers(req.From, req.To)
	e.ok(c)
}

func (e *Env) EndGameHandler(c *gin.Context) {
	completed, err := e.Manager.EndGame()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"game":    completed,
		"winners": history.Winners(completed),
		"state":   e.Manager.Snapshot(),
	})
}

func (e *Env) CancelGameHandler(c *gin.Context) {
	e.Manager.CancelGame()
	e.ok(c)
}

func (e *Env) HistoryHandler(c *gin.Context) {
	entries := e.Manager.HistoryEntries()
	c.JSON(http.StatusOK, gin.H{
		"games": lo.Map(entries, func(g models.GameSession, _ int) gin.H {
			return gin.H{
				"game":    g,
				"winners": history.Winners(&g),
				"totals":  history.Totals(&g),
			}
		}),
	})
}

func (e *Env) DeleteHistoryHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := e.Manager.DeleteHistoryEntry(id); err != nil {
		respondError(c, err)
		return
	}
	e.ok(c)
}

func (e *Env) PlayersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"players": e.Manager.SavedPlayers()})
}

func (e *Env) DeletePlayerHandler(c *gin.Context) {
	if err := e.Manager.DeleteSavedPlayer(c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	e.ok(c)
}

// settingsRequest uses pointers so an omitted field is left untouched.
type settingsRequest struct {
	UILanguage             *string `json:"uiLanguage"`
	TTSLanguage            *string `json:"ttsLanguage"`
	PreferredTimerDuration *int    `json:"preferredTimerDuration"`
	ScrollLockFullscreen   *bool   `json:"scrollLockFullscreen"`
}

func (e *Env) GetSettingsHandler(c *gin.Context) {
	out := gin.H{}
	for key, name := range settingsKeys() {
		if v, ok := e.Store.Preference(key); ok {
			out[name] = v
		}
	}
	c.JSON(http.StatusOK, out)
}

func (e *Env) UpdateSettingsHandler(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	set := func(key, value string) {
		if err := e.Store.SetPreference(key, value); err != nil {
			util.LogWarn("Failed to save setting %s: %v", key, err)
		}
	}
	if req.UILanguage != nil {
		set(constants.KeyUILanguage, *req.UILanguage)
	}
	if req.TTSLanguage != nil {
		set(constants.KeyTTSLanguage, *req.TTSLanguage)
	}
	if req.PreferredTimerDuration != nil {
		set(constants.KeyPreferredTimerDuration, strconv.Itoa(*req.PreferredTimerDuration))
	}
	if req.ScrollLockFullscreen != nil {
		set(constants.KeyScrollLockFullscreen, strconv.FormatBool(*req.ScrollLockFullscreen))
	}
	e.Events.Publish("state")
	e.ok(c)
}

func (e *Env) HealthzHandler(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(e.App.StartTime)
	snap := e.Manager.Snapshot()

	e.App.LimiterMutex.RLock()
	limiterCount := len(e.App.LimiterMap)
	e.App.LimiterMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"env":             map[bool]string{true: "production", false: "development"}[e.App.IsProduction],
		"phase":           snap.Phase,
		"history_games":   len(e.Manager.HistoryEntries()),
		"active_limiters": limiterCount,
		"memory_alloc_mb": m.Alloc / 1024 / 1024,
		"memory_sys_mb":   m.Sys / 1024 / 1024,
		"memory_gc_count": m.NumGC,
		"uptime":          util.FormatUptime(uptime),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

// ok answers a successful mutation with the fresh snapshot, so callers
// without a websocket still see the result.
func (e *Env) ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": e.Manager.Snapshot()})
}

// shareURL is the address other devices on the network should open;
// configurable for reverse-proxy setups, otherwise derived from the
// request.
func (e *Env) shareURL(c *gin.Context) string {
	if e.App.ExternalURL != "" {
		return e.App.ExternalURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func settingsKeys() map[string]string {
	return map[string]string{
		constants.KeyUILanguage:             "uiLanguage",
		constants.KeyTTSLanguage:            "ttsLanguage",
		constants.KeyPreferredTimerDuration: "preferredTimerDuration",
		constants.KeyScrollLockFullscreen:   "scrollLockFullscreen",
	}
}

func badRequest(c *gin.Context, err error) {
	util.LogWarn("Rejected request to %s: %v", c.FullPath(), err)
	c.JSON(http.StatusBadRequest, gin.H{"error_code": constants.ErrorCodeBadRequest})
}

// respondError maps a manager error to a status and its stable error
// code; clients branch on the code, not the message.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	code := constants.ErrorCodeBadRequest
	switch {
	case errors.Is(err, game.ErrMinPlayers):
		code = constants.ErrorCodeMinPlayers
	case errors.Is(err, game.ErrMissingScores):
		code = constants.ErrorCodeMissingScores
	case errors.Is(err, game.ErrMultipleZeroScores):
		code = constants.ErrorCodeMultipleZeroScores
	case errors.Is(err, game.ErrActiveGameExists):
		status = http.StatusConflict
		code = constants.ErrorCodeActiveGameExists
	case errors.Is(err, game.ErrNoPendingGame):
		status = http.StatusConflict
		code = constants.ErrorCodeNoPendingGame
	case errors.Is(err, game.ErrNoActiveGame):
		status = http.StatusConflict
		code = constants.ErrorCodeNoActiveGame
	case errors.Is(err, game.ErrQuotaExceeded):
		status = http.StatusInsufficientStorage
		code = constants.ErrorCodeQuotaExceeded
	case errors.Is(err, game.ErrStorage):
		status = http.StatusInternalServerError
		code = constants.ErrorCodeStorage
	}
	c.JSON(status, gin.H{"error_code": code})
}
