package constants

import "time"

type ContextKey string

const (
	MaxPlayers = 6
	MinPlayers = 2

	ExtensionDurationSeconds = 30
	TimerLowTime             = 10
	TimerWarningTime         = 15

	DefaultTimerDuration = 60
	DefaultMaxExtensions = 3
	DefaultTTSLanguage   = "de-DE"
	DefaultUILanguage    = "en"

	// ResumeDelay sequences the turn chime/voice before the countdown resumes.
	ResumeDelay = 500 * time.Millisecond
)

// TimerPresets are the selectable turn durations, in seconds.
var TimerPresets = []int{30, 60, 90, 120, 180, 300}

// ExtensionPresets are the selectable per-player extension budgets.
var ExtensionPresets = []int{0, 1, 2, 3, 5, 10}

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

const (
	KeyActiveGame             = "active-game"
	KeySavedPlayers           = "saved-players"
	KeyGameHistory            = "game-history"
	KeyGameNumberSeq          = "game-number-seq"
	KeyUILanguage             = "ui-language"
	KeyTTSLanguage            = "tts-language"
	KeyPreferredTimerDuration = "preferred-timer-duration"
	KeyScrollLockFullscreen   = "scroll-lock-fullscreen"
)

const (
	RouteHome           = "/"
	RouteState          = "/state"
	RouteGameBegin      = "/game/begin"
	RouteGameStarter    = "/game/starting-player"
	RoutePendingCancel  = "/game/pending/cancel"
	RouteGameNext       = "/game/next"
	RouteGameExtend     = "/game/extend"
	RouteGamePause      = "/game/pause"
	RouteGameResume     = "/game/resume"
	RouteGameResetTimer = "/game/reset-timer"
	RouteGameDuration   = "/game/duration"
	RouteWinner         = "/game/winner"
	RouteWinnerCancel   = "/game/winner/cancel"
	RouteScore          = "/game/score"
	RouteSaveRound      = "/game/round"
	RoutePastScore      = "/game/rounds/:index/score"
	RouteReorder        = "/game/reorder"
	RouteGameEnd        = "/game/end"
	RouteGameCancel     = "/game/cancel"
	RouteHistory        = "/history"
	RouteHistoryDelete  = "/history/:id"
	RoutePlayers        = "/players"
	RoutePlayersDelete  = "/players/:name"
	RouteSettings       = "/settings"
	RouteWS             = "/ws"
	RouteQR             = "/qr"
	RouteHealthz        = "/healthz"
)

const (
	ErrorCodeMinPlayers         = "min_players"
	ErrorCodeNoPendingGame      = "no_pending_game"
	ErrorCodeActiveGameExists   = "active_game_exists"
	ErrorCodeNoActiveGame       = "no_active_game"
	ErrorCodeMissingScores      = "missing_scores"
	ErrorCodeMultipleZeroScores = "multiple_zero_scores"
	ErrorCodeDuplicatePlayer    = "duplicate_player"
	ErrorCodeRosterFull         = "roster_full"
	ErrorCodeQuotaExceeded      = "quota_exceeded"
	ErrorCodeStorage            = "storage_error"
	ErrorCodeBadRequest         = "bad_request"
)

const (
	RequestIDKey ContextKey = "request_id"
)
