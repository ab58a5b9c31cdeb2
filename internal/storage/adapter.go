package storage

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/samber/lo"

	constants "github.com/christophrus/rummikub-tracker/internal/constants"
	models "github.com/christophrus/rummikub-tracker/internal/models"
	util "github.com/christophrus/rummikub-tracker/internal/util"
)

// Adapter round-trips game state through the KeyValueStore. All
// legacy-shape repair happens here: string players become records
// (models.Player handles that at decode time), a missing extension map is
// synthesized, and avatar images embedded in old game/history records are
// moved out into the saved-players registry.
type Adapter struct {
	KV KeyValueStore
}

func NewAdapter(kv KeyValueStore) *Adapter {
	return &Adapter{KV: kv}
}

// LoadActiveGame returns the persisted active session, or nil if there is
// none. An unreadable record is discarded with a warning rather than
// surfaced; a reload must never crash into a broken game.
func (a *Adapter) LoadActiveGame() (*models.GameSession, error) {
	raw, err := a.KV.Get(constants.KeyActiveGame)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var g models.GameSession
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		util.LogWarn("Discarding unreadable active-game record: %v", err)
		return nil, nil
	}
	hadImages := a.repairGame(&g)
	if hadImages {
		// One-time migration: rewrite the record without embedded images.
		if err := a.SaveActiveGame(&g); err != nil {
			util.LogWarn("Failed to rewrite legacy active-game record: %v", err)
		}
	}
	a.rehydrateImages(g.Players)
	return &g, nil
}

func (a *Adapter) SaveActiveGame(g *models.GameSession) error {
	stripped := stripImages(*g)
	data, err := json.Marshal(&stripped)
	if err != nil {
		return err
	}
	return a.KV.Set(constants.KeyActiveGame, string(data))
}

func (a *Adapter) ClearActiveGame() error {
	return a.KV.Remove(constants.KeyActiveGame)
}

func (a *Adapter) LoadSavedPlayers() ([]models.Player, error) {
	raw, err := a.KV.Get(constants.KeySavedPlayers)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var players []models.Player
	if err := json.Unmarshal([]byte(raw), &players); err != nil {
		util.LogWarn("Discarding unreadable saved-players record: %v", err)
		return nil, nil
	}
	return players, nil
}

func (a *Adapter) SaveSavedPlayers(players []models.Player) error {
	data, err := json.Marshal(players)
	if err != nil {
		return err
	}
	return a.KV.Set(constants.KeySavedPlayers, string(data))
}

func (a *Adapter) LoadHistory() ([]models.GameSession, error) {
	raw, err := a.KV.Get(constants.KeyGameHistory)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []models.GameSession
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		util.LogWarn("Discarding unreadable game-history record: %v", err)
		return nil, nil
	}
	rewrite := false
	for i := range entries {
		if a.repairGame(&entries[i]) {
			rewrite = true
		}
	}
	if rewrite {
		if err := a.SaveHistory(entries); err != nil {
			util.LogWarn("Failed to rewrite legacy game-history record: %v", err)
		}
	}
	for i := range entries {
		a.rehydrateImages(entries[i].Players)
	}
	return entries, nil
}

func (a *Adapter) SaveHistory(entries []models.GameSession) error {
	stripped := lo.Map(entries, func(g models.GameSession, _ int) models.GameSession {
		return stripImages(g)
	})
	data, err := json.Marshal(stripped)
	if err != nil {
		return err
	}
	return a.KV.Set(constants.KeyGameHistory, string(data))
}

// GameNumber returns the persisted auto-name counter, starting at 1.
func (a *Adapter) GameNumber() int {
	raw, err := a.KV.Get(constants.KeyGameNumberSeq)
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (a *Adapter) SetGameNumber(n int) error {
	return a.KV.Set(constants.KeyGameNumberSeq, strconv.Itoa(n))
}

// Preference reads a scalar preference key; ok is false when unset.
func (a *Adapter) Preference(key string) (string, bool) {
	raw, err := a.KV.Get(key)
	if err != nil {
		return "", false
	}
	return raw, true
}

func (a *Adapter) SetPreference(key, value string) error {
	return a.KV.Set(key, value)
}

// repairGame normalizes a loaded record in place: synthesizes a missing
// extension map and clamps the turn pointer into range. It reports whether
// the record still embedded avatar images (legacy shape needing rewrite).
func (a *Adapter) repairGame(g *models.GameSession) (hadImages bool) {
	if g.PlayerExtensions == nil {
		g.PlayerExtensions = lo.Associate(g.Players, func(p models.Player) (string, int) {
			return p.Name, 0
		})
	}
	if len(g.Players) > 0 && (g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.Players)) {
		util.LogWarn("Clamping out-of-range player index %d for game %q", g.CurrentPlayerIndex, g.Name)
		g.CurrentPlayerIndex = 0
	}
	hadImages = lo.SomeBy(g.Players, func(p models.Player) bool {
		return p.Image != ""
	})
	if hadImages {
		for i := range g.Players {
			g.Players[i].Image = ""
		}
	}
	return hadImages
}

// rehydrateImages fills each player's avatar from the saved-players
// registry by case-insensitive name. A player no longer in the registry
// simply loads without an image.
func (a *Adapter) rehydrateImages(players []models.Player) {
	saved, err := a.LoadSavedPlayers()
	if err != nil || len(saved) == 0 {
		return
	}
	for i := range players {
		match, ok := lo.Find(saved, func(p models.Player) bool {
			return util.SameName(p.Name, players[i].Name)
		})
		if ok {
			players[i].Image = match.Image
		}
	}
}

func stripImages(g models.GameSession) models.GameSession {
	g.Players = lo.Map(g.Players, func(p models.Player, _ int) models.Player {
		p.Image = ""
		return p
	})
	return g
}
