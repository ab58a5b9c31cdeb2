// Package game holds the turn/round state machine: whose turn it is, how
// the countdown advances and resets, how extensions are granted, how
// rounds are scored and how a game moves from setup through completion.
package game

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	audio "github.com/christophrus/rummikub-tracker/internal/audio"
	clock "github.com/christophrus/rummikub-tracker/internal/clock"
	constants "github.com/christophrus/rummikub-tracker/internal/constants"
	history "github.com/christophrus/rummikub-tracker/internal/history"
	models "github.com/christophrus/rummikub-tracker/internal/models"
	realtime "github.com/christophrus/rummikub-tracker/internal/realtime"
	roster "github.com/christophrus/rummikub-tracker/internal/roster"
	storage "github.com/christophrus/rummikub-tracker/internal/storage"
	util "github.com/christophrus/rummikub-tracker/internal/util"
)

const (
	PhaseNoGame  = "noGame"
	PhasePending = "pendingSelection"
	PhaseActive  = "active"
)

var (
	ErrMinPlayers         = errors.New(constants.ErrorCodeMinPlayers)
	ErrNoPendingGame      = errors.New(constants.ErrorCodeNoPendingGame)
	ErrActiveGameExists   = errors.New(constants.ErrorCodeActiveGameExists)
	ErrNoActiveGame       = errors.New(constants.ErrorCodeNoActiveGame)
	ErrMissingScores      = errors.New(constants.ErrorCodeMissingScores)
	ErrMultipleZeroScores = errors.New(constants.ErrorCodeMultipleZeroScores)
	ErrQuotaExceeded      = errors.New(constants.ErrorCodeQuotaExceeded)
	ErrStorage            = errors.New(constants.ErrorCodeStorage)
)

// PendingGame holds a validated new-game request while a human picks who
// goes first. Nothing is persisted until the pick commits.
type PendingGame struct {
	Players       []models.Player `json:"players"`
	Name          string          `json:"name"`
	TimerDuration int             `json:"timerDuration"`
	MaxExtensions int             `json:"maxExtensions"`
	TTSLanguage   string          `json:"ttsLanguage"`
}

type Config struct {
	// ResumeDelay sequences audio cues before the countdown resumes.
	// Zero means the default 500ms.
	ResumeDelay time.Duration
	// DefaultTTSLanguage is used when a session has no language of its own.
	DefaultTTSLanguage string
}

// Manager is the single writer for all session state. Every exported
// method takes the mutex; the 1-second tick driver and HTTP handlers are
// serialized through it, standing in for the reference's single-threaded
// event loop.
type Manager struct {
	mu sync.Mutex

	store   *storage.Adapter
	history *history.Store
	audio   audio.Notifier
	events  *realtime.Broadcaster

	phase   string
	pending *PendingGame
	active  *models.GameSession
	clock   clock.Clock

	startingPlayerIndex int
	currentRound        int
	roundScores         map[string]string
	declaredWinner      string
	savedPlayers        []models.Player

	resumeDelay time.Duration
	defaultTTS  string

	// resumeGen invalidates delayed resumes scheduled before a later
	// timer mutation; the stale callback sees a bumped generation and
	// does nothing.
	resumeGen int
	after     func(d time.Duration, f func())
}

func NewManager(store *storage.Adapter, hist *history.Store, notifier audio.Notifier, events *realtime.Broadcaster, cfg Config) (*Manager, error) {
	if cfg.ResumeDelay == 0 {
		cfg.ResumeDelay = constants.ResumeDelay
	}
	if cfg.DefaultTTSLanguage == "" {
		if lang, ok := store.Preference(constants.KeyTTSLanguage); ok {
			cfg.DefaultTTSLanguage = lang
		} else {
			cfg.DefaultTTSLanguage = constants.DefaultTTSLanguage
		}
	}

	m := &Manager{
		store:        store,
		history:      hist,
		audio:        notifier,
		events:       events,
		phase:        PhaseNoGame,
		clock:        *clock.New(constants.DefaultTimerDuration),
		currentRound: 1,
		roundScores:  map[string]string{},
		resumeDelay:  cfg.ResumeDelay,
		defaultTTS:   cfg.DefaultTTSLanguage,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}

	saved, err := store.LoadSavedPlayers()
	if err != nil {
		return nil, err
	}
	m.savedPlayers = saved

	g, err := store.LoadActiveGame()
	if err != nil {
		return nil, err
	}
	if g != nil {
		m.active = g
		m.phase = PhaseActive
		m.currentRound = len(g.Rounds) + 1
		m.startingPlayerIndex = g.CurrentPlayerIndex
		m.clock = *clock.New(g.TimerDuration)
		util.LogInfo("Restored active game %q (round %d, %d players)", g.Name, m.currentRound, len(g.Players))
	}
	return m, nil
}

// Snapshot is what the UI renders from; everything in it is a copy.
type Snapshot struct {
	Phase               string              `json:"phase"`
	Pending             *PendingGame        `json:"pending,omitempty"`
	Game                *models.GameSession `json:"game,omitempty"`
	CurrentRound        int                 `json:"currentRound"`
	RoundScores         map[string]string   `json:"roundScores"`
	DeclaredWinner      string              `json:"declaredWinner,omitempty"`
	StartingPlayerIndex int                 `json:"startingPlayerIndex"`
	TimerSeconds        int                 `json:"timerSeconds"`
	TimerDuration       int                 `json:"timerDuration"`
	TimerActive         bool                `json:"timerActive"`
	TimerDisplay        string              `json:"timerDisplay"`
	Totals              map[string]int      `json:"totals,omitempty"`
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Phase:               m.phase,
		CurrentRound:        m.currentRound,
		RoundScores:         maps.Clone(m.roundScores),
		DeclaredWinner:      m.declaredWinner,
		StartingPlayerIndex: m.startingPlayerIndex,
		TimerSeconds:        m.clock.SecondsRemaining,
		TimerDuration:       m.clock.ConfiguredDuration,
		TimerActive:         m.clock.Active,
		TimerDisplay:        util.FormatTime(m.clock.SecondsRemaining),
	}
	if m.pending != nil {
		p := *m.pending
		p.Players = lo.Map(p.Players, func(pl models.Player, _ int) models.Player { return pl })
		snap.Pending = &p
	}
	if m.active != nil {
		snap.Game = copySession(m.active)
		snap.Totals = history.Totals(m.active)
	}
	return snap
}

// BeginGame validates the roster and parks the request for starting-player
// selection. The game is not materialized or persisted yet.
func (m *Manager) BeginGame(players []models.Player, name string, timerDuration, maxExtensions int, ttsLanguage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == PhaseActive {
		return ErrActiveGameExists
	}
	valid := roster.ValidateMinPlayers(players, constants.MinPlayers)
	if valid == nil {
		return ErrMinPlayers
	}
	if timerDuration <= 0 {
		timerDuration = constants.DefaultTimerDuration
	}
	if maxExtensions < 0 {
		maxExtensions = 0
	}
	m.pending = &PendingGame{
		Players:       valid,
		Name:          name,
		TimerDuration: timerDuration,
		MaxExtensions: maxExtensions,
		TTSLanguage:   ttsLanguage,
	}
	m.phase = PhasePending
	m.publish("state")
	return nil
}

// CancelPending abandons the parked new-game request.
func (m *Manager) CancelPending() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhasePending {
		return
	}
	m.pending = nil
	m.phase = PhaseNoGame
	m.publish("state")
}

// SelectStartingPlayer commits the pending game: merges the roster into
// the saved-players registry, resolves a unique name, persists the new
// session and, after the short cue delay, announces the starter and
// starts the clock. A storage failure leaves no partial session behind.
func (m *Manager) SelectStartingPlayer(index int) (*models.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhasePending || m.pending == nil {
		return nil, ErrNoPendingGame
	}
	p := m.pending
	if index < 0 || index >= len(p.Players) {
		index = 0
	}

	if err := m.mergeSavedPlayers(p.Players); err != nil {
		return nil, mapStorageErr(err)
	}

	g := &models.GameSession{
		ID:                    time.Now().UnixMilli(),
		Name:                  m.resolveName(p.Name),
		Players:               p.Players,
		Rounds:                []models.Round{},
		StartTime:             time.Now(),
		Status:                constants.StatusActive,
		CurrentPlayerIndex:    index,
		TimerDuration:         p.TimerDuration,
		OriginalTimerDuration: p.TimerDuration,
		MaxExtensions:         p.MaxExtensions,
		PlayerExtensions: lo.Associate(p.Players, func(pl models.Player) (string, int) {
			return pl.Name, 0
		}),
		TTSLanguage: p.TTSLanguage,
	}
	if err := m.store.SaveActiveGame(g); err != nil {
		return nil, mapStorageErr(err)
	}

	m.active = g
	m.pending = nil
	m.phase = PhaseActive
	m.startingPlayerIndex = index
	m.currentRound = 1
	m.roundScores = map[string]string{}
	m.declaredWinner = ""
	m.clock = *clock.New(p.TimerDuration)

	starter := g.Players[index].Name
	lang := m.ttsLang(g)
	m.scheduleResume(func(m *Manager) {
		m.audio.PlayTurnChime()
		m.audio.Speak(starter, lang)
		m.clock.Start()
	})
	util.LogInfo("Started game %q with %d players, %ds turns, starter %q", g.Name, len(g.Players), g.TimerDuration, starter)
	m.publish("state")
	return copySession(g), nil
}

// NextPlayer advances the turn, called from the skip action or clock
// expiry. Unused extension time is forfeited; the countdown reverts to
// the baseline duration and auto-resumes after the cue delay.
func (m *Manager) NextPlayer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPlayerLocked()
}

func (m *Manager) nextPlayerLocked() {
	if m.phase != PhaseActive {
		return
	}
	g := m.active
	m.resumeGen++
	m.clock.Pause()

	g.CurrentPlayerIndex = (g.CurrentPlayerIndex + 1) % len(g.Players)
	next := g.Players[g.CurrentPlayerIndex].Name
	g.TimerDuration = g.OriginalTimerDuration
	m.clock.SetDuration(g.OriginalTimerDuration)

	m.audio.PlayTurnChime()
	m.audio.Speak(next, m.ttsLang(g))
	if err := m.store.SaveActiveGame(g); err != nil {
		util.LogWarn("Failed to persist turn advance: %v", err)
	}
	m.scheduleResume(func(m *Manager) {
		m.clock.Start()
	})
	m.publish("state")
}

// ExtendTimer grants the current player one 30-second extension. Safe
// no-op when there is no game, no extension budget, or the player has
// used theirs up.
func (m *Manager) ExtendTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseActive {
		return
	}
	g := m.active
	if len(g.Players) == 0 {
		return
	}
	current := g.Players[g.CurrentPlayerIndex].Name
	used := g.PlayerExtensions[current]
	if g.MaxExtensions <= 0 || used >= g.MaxExtensions {
		return
	}

	m.clock.Extend(constants.ExtensionDurationSeconds)
	g.TimerDuration = m.clock.ConfiguredDuration
	g.PlayerExtensions[current] = used + 1
	if err := m.store.SaveActiveGame(g); err != nil {
		util.LogWarn("Failed to persist extension: %v", err)
	}
	m.publish("state")
}

// UpdateTimerDuration applies a new baseline turn length immediately,
// overriding any countdown in progress. Without an active game it is
// recorded as the preferred duration for the next one.
func (m *Manager) UpdateTimerDuration(seconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if seconds <= 0 {
		return
	}
	m.resumeGen++
	m.clock.SetDuration(seconds)
	if m.phase == PhaseActive {
		g := m.active
		g.TimerDuration = seconds
		g.OriginalTimerDuration = seconds
		if err := m.store.SaveActiveGame(g); err != nil {
			util.LogWarn("Failed to persist timer duration: %v", err)
		}
	} else {
		if err := m.store.SetPreference(constants.KeyPreferredTimerDuration, strconv.Itoa(seconds)); err != nil {
			util.LogWarn("Failed to save preferred timer duration: %v", err)
		}
	}
	m.publish("state")
}

func (m *Manager) PauseTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumeGen++
	m.clock.Pause()
	m.publish("state")
}

func (m *Manager) ResumeTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock.Start()
	m.publish("state")
}

// ResetTimer restores the baseline duration and restarts the countdown.
func (m *Manager) ResetTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumeGen++
	if m.phase == PhaseActive {
		g := m.active
		m.clock.SetDuration(g.OriginalTimerDuration)
		if g.TimerDuration != g.OriginalTimerDuration {
			g.TimerDuration = g.OriginalTimerDuration
			if err := m.store.SaveActiveGame(g); err != nil {
				util.LogWarn("Failed to persist timer reset: %v", err)
			}
		}
	} else {
		m.clock.SetDuration(m.clock.ConfiguredDuration)
	}
	m.clock.Start()
	m.publish("state")
}

// DeclareWinner marks the current player as going out this round: their
// score entry is forced to "0" and the clock pauses while the table
// counts tiles. Nothing is saved until the round is.
func (m *Manager) DeclareWinner() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseActive || len(m.active.Players) == 0 {
		return
	}
	m.resumeGen++
	m.clock.Pause()
	winner := m.active.Players[m.active.CurrentPlayerIndex].Name
	m.declaredWinner = winner
	m.roundScores[winner] = "0"
	m.publish("state")
}

// CancelWinner clears the declared-winner marker and resumes the clock.
func (m *Manager) CancelWinner() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseActive || m.declaredWinner == "" {
		return
	}
	m.declaredWinner = ""
	m.clock.Start()
	m.publish("state")
}

// UpdateRoundScore writes one entry into the score buffer. Unknown player
// names are ignored.
func (m *Manager) UpdateRoundScore(playerName, score string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseActive {
		return
	}
	p, ok := lo.Find(m.active.Players, func(p models.Player) bool {
		return util.SameName(p.Name, playerName)
	})
	if !ok {
		return
	}
	m.roundScores[p.Name] = score
	m.publish("state")
}

// SaveRound validates and records the buffered scores as one round, then
// rotates the starting player and leaves the clock paused until the next
// round is explicitly resumed.
func (m *Manager) SaveRound() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseActive {
		return ErrNoActiveGame
	}
	g := m.active

	for _, p := range g.Players {
		raw, ok := m.roundScores[p.Name]
		if !ok || raw == "" {
			return ErrMissingScores
		}
	}
	zeroScores := lo.CountBy(g.Players, func(p models.Player) bool {
		n, err := strconv.Atoi(strings.TrimSpace(m.roundScores[p.Name]))
		return err == nil && n == 0
	})
	if zeroScores > 1 {
		return ErrMultipleZeroScores
	}

	m.resumeGen++
	prevRounds := g.Rounds
	prevIndex := g.CurrentPlayerIndex
	prevDuration := g.TimerDuration

	g.Rounds = append(g.Rounds, models.Round{
		Round:     m.currentRound,
		Scores:    maps.Clone(m.roundScores),
		Timestamp: time.Now(),
	})
	m.startingPlayerIndex = (m.startingPlayerIndex + 1) % len(g.Players)
	g.CurrentPlayerIndex = m.startingPlayerIndex
	g.TimerDuration = g.OriginalTimerDuration

	if err := m.store.SaveActiveGame(g); err != nil {
		g.Rounds = prevRounds
		g.CurrentPlayerIndex = prevIndex
		g.TimerDuration = prevDuration
		m.startingPlayerIndex = prevIndex
		return mapStorageErr(err)
	}

	m.currentRound++
	m.roundScores = map[string]string{}
	m.declaredWinner = ""
	m.clock.Pause()
	m.clock.SetDuration(g.OriginalTimerDuration)

	starter := g.Players[g.CurrentPlayerIndex].Name
	lang := m.ttsLang(g)
	m.scheduleResume(func(m *Manager) {
		// Announce only; the next round's clock stays paused until the
		// table explicitly resumes it.
		m.audio.PlayTurnChime()
		m.audio.Speak(starter, lang)
	})
	util.LogInfo("Saved round %d of game %q, next starter %q", m.currentRound-1, g.Name, starter)
	m.publish("state")
	return nil
}

// UpdatePastScore corrects one entry of an already-saved round. The input
// is re-parsed (blank or junk becomes 0) and stored normalized. The
// one-zero-per-round rule is deliberately not re-checked here.
func (m *Manager) UpdatePastScore(roundIndex int, playerName, score string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseActive {
		return ErrNoActiveGame
	}
	g := m.active
	if roundIndex < 0 || roundIndex >= len(g.Rounds) {
		return nil
	}
	p, ok := lo.Find(g.Players, func(p models.Player) bool {
		return util.SameName(p.Name, playerName)
	})
	if !ok {
		return nil
	}
	g.Rounds[roundIndex].Scores[p.Name] = strconv.Itoa(util.ParseScore(score))
	if err := m.store.SaveActiveGame(g); err != nil {
		return mapStorageErr(err)
	}
	m.publish("state")
	return nil
}

// EndGame freezes the session into the history archive: lowest cumulative
// total wins. Returns the completed record.
func (m *Manager) EndGame() (*models.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseActive {
		return nil, ErrNoActiveGame
	}
	g := m.active
	m.resumeGen++
	m.clock.Pause()

	totals := history.Totals(g)
	winners := history.Winners(g)
	now := time.Now()
	g.EndTime = &now
	g.Status = constants.StatusCompleted
	g.FinalScores = totals
	if len(winners) > 0 {
		g.Winner = winners[0]
	}

	if err := m.history.Add(*copySession(g)); err != nil {
		g.EndTime = nil
		g.Status = constants.StatusActive
		g.FinalScores = nil
		g.Winner = ""
		return nil, mapStorageErr(err)
	}
	if err := m.store.ClearActiveGame(); err != nil {
		util.LogWarn("Failed to clear active-game record: %v", err)
	}

	completed := copySession(g)
	m.resetToNoGame()
	m.audio.PlayVictoryFanfare()
	util.LogInfo("Ended game %q, winner %q", completed.Name, completed.Winner)
	m.publish("state")
	return completed, nil
}

// CancelGame abandons the active or pending game without recording
// anything in history.
func (m *Manager) CancelGame() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phase {
	case PhasePending:
		m.pending = nil
		m.phase = PhaseNoGame
	case PhaseActive:
		m.resumeGen++
		if err := m.store.ClearActiveGame(); err != nil {
			util.LogWarn("Failed to clear active-game record: %v", err)
		}
		util.LogInfo("Abandoned game %q", m.active.Name)
		m.resetToNoGame()
	default:
		return
	}
	m.publish("state")
}

// Tick drives the countdown; the caller invokes it once per real second.
func (m *Manager) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseActive {
		return
	}
	lowTime, expired := m.clock.Tick()
	if lowTime {
		m.audio.PlayTick()
	}
	if expired {
		m.nextPlayerLocked()
		return
	}
	if m.clock.Active {
		m.publish("tick")
	}
}

// ReorderGamePlayers changes the turn order mid-game; the current and
// starting player pointers follow their humans to the new positions.
func (m *Manager) ReorderGamePlayers(fromIndex, dropIndex int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseActive {
		return
	}
	g := m.active
	currentName := g.Players[g.CurrentPlayerIndex].Name
	starterName := g.Players[m.startingPlayerIndex].Name
	reordered := roster.Reorder(g.Players, fromIndex, dropIndex)
	if len(reordered) != len(g.Players) {
		return
	}
	g.Players = reordered
	g.CurrentPlayerIndex = indexOfName(g.Players, currentName)
	m.startingPlayerIndex = indexOfName(g.Players, starterName)
	if err := m.store.SaveActiveGame(g); err != nil {
		util.LogWarn("Failed to persist reorder: %v", err)
	}
	m.publish("state")
}

// SavedPlayers returns a copy of the saved-players registry.
func (m *Manager) SavedPlayers() []models.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Map(m.savedPlayers, func(p models.Player, _ int) models.Player { return p })
}

func (m *Manager) DeleteSavedPlayer(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated := lo.Filter(m.savedPlayers, func(p models.Player, _ int) bool {
		return !util.SameName(p.Name, name)
	})
	if len(updated) == len(m.savedPlayers) {
		return nil
	}
	if err := m.store.SaveSavedPlayers(updated); err != nil {
		return mapStorageErr(err)
	}
	m.savedPlayers = updated
	m.publish("state")
	return nil
}

// HistoryEntries returns the archived games, newest first.
func (m *Manager) HistoryEntries() []models.GameSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Map(m.history.Entries(), func(g models.GameSession, _ int) models.GameSession {
		return *copySession(&g)
	})
}

// DeleteHistoryEntry removes one archived game. Unknown ids are a no-op.
func (m *Manager) DeleteHistoryEntry(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.history.Delete(id); err != nil {
		return mapStorageErr(err)
	}
	m.publish("state")
	return nil
}

// Totals returns the active game's running totals.
func (m *Manager) Totals() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return history.Totals(m.active)
}

// mergeSavedPlayers adds roster names not yet in the registry. First seen
// wins: an existing saved image is never overwritten.
func (m *Manager) mergeSavedPlayers(players []models.Player) error {
	merged := m.savedPlayers
	added := false
	for _, p := range players {
		known := lo.ContainsBy(merged, func(s models.Player) bool {
			return util.SameName(s.Name, p.Name)
		})
		if !known {
			merged = append(merged, p)
			added = true
		}
	}
	if !added {
		return nil
	}
	if err := m.store.SaveSavedPlayers(merged); err != nil {
		return err
	}
	m.savedPlayers = merged
	return nil
}

// resolveName returns the user-supplied name, or an auto-generated
// "Game <date> #<n>" from the persisted counter. The counter only
// advances when its candidate avoids every existing session and history
// name; after 1000 collisions (cannot happen in practice) a timestamped
// name is used instead.
func (m *Manager) resolveName(name string) string {
	name = strings.TrimSpace(name)
	if name != "" {
		return name
	}
	date := time.Now().Format("02.01.2006")
	n := m.store.GameNumber()
	for i := 0; i < 1000; i++ {
		candidate := fmt.Sprintf("Game %s #%d", date, n)
		if !m.nameTaken(candidate) {
			if err := m.store.SetGameNumber(n + 1); err != nil {
				util.LogWarn("Failed to persist game-number counter: %v", err)
			}
			return candidate
		}
		n++
	}
	return fmt.Sprintf("Game %s %d", date, time.Now().UnixMilli())
}

func (m *Manager) nameTaken(name string) bool {
	if m.active != nil && util.SameName(m.active.Name, name) {
		return true
	}
	return m.history.NameTaken(name)
}

// scheduleResume runs f after the cue delay unless a later timer mutation
// bumps the generation first. The reference fires its delayed resume
// unconditionally; guarding it here is a deliberate hardening.
func (m *Manager) scheduleResume(f func(m *Manager)) {
	gen := m.resumeGen
	m.after(m.resumeDelay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if gen != m.resumeGen || m.phase != PhaseActive {
			return
		}
		f(m)
		m.publish("state")
	})
}

func (m *Manager) resetToNoGame() {
	m.active = nil
	m.pending = nil
	m.phase = PhaseNoGame
	m.startingPlayerIndex = 0
	m.currentRound = 1
	m.roundScores = map[string]string{}
	m.declaredWinner = ""
	m.clock.Pause()
}

func (m *Manager) ttsLang(g *models.GameSession) string {
	if g != nil && g.TTSLanguage != "" {
		return g.TTSLanguage
	}
	return m.defaultTTS
}

func (m *Manager) publish(event string) {
	if m.events != nil {
		m.events.Publish(event)
	}
}

func mapStorageErr(err error) error {
	if errors.Is(err, storage.ErrQuotaExceeded) {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

func indexOfName(players []models.Player, name string) int {
	for i, p := range players {
		if p.Name == name {
			return i
		}
	}
	return 0
}

func copySession(g *models.GameSession) *models.GameSession {
	if g == nil {
		return nil
	}
	out := *g
	out.Players = lo.Map(g.Players, func(p models.Player, _ int) models.Player { return p })
	out.Rounds = lo.Map(g.Rounds, func(r models.Round, _ int) models.Round {
		r.Scores = maps.Clone(r.Scores)
		return r
	})
	out.PlayerExtensions = maps.Clone(g.PlayerExtensions)
	out.FinalScores = maps.Clone(g.FinalScores)
	return &out
}
