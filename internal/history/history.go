// Package history is the completed-game archive: append on game end,
// delete by id, and the scoring reductions the archive views need.
package history

import (
	"github.com/samber/lo"

	models "github.com/christophrus/rummikub-tracker/internal/models"
	storage "github.com/christophrus/rummikub-tracker/internal/storage"
	util "github.com/christophrus/rummikub-tracker/internal/util"
)

// Store keeps completed games newest first and writes through to storage.
// Callers serialize access; the game manager is the single writer.
type Store struct {
	adapter *storage.Adapter
	entries []models.GameSession
}

func NewStore(adapter *storage.Adapter) (*Store, error) {
	entries, err := adapter.LoadHistory()
	if err != nil {
		return nil, err
	}
	return &Store{adapter: adapter, entries: entries}, nil
}

func (s *Store) Entries() []models.GameSession {
	return s.entries
}

// Add prepends a completed game and persists the archive.
func (s *Store) Add(g models.GameSession) error {
	updated := append([]models.GameSession{g}, s.entries...)
	if err := s.adapter.SaveHistory(updated); err != nil {
		return err
	}
	s.entries = updated
	return nil
}

// Delete removes the entry with the given id. Unknown ids are a no-op.
func (s *Store) Delete(id int64) error {
	updated := lo.Filter(s.entries, func(g models.GameSession, _ int) bool {
		return g.ID != id
	})
	if len(updated) == len(s.entries) {
		return nil
	}
	if err := s.adapter.SaveHistory(updated); err != nil {
		return err
	}
	s.entries = updated
	return nil
}

// NameTaken reports whether any archived game already uses the name,
// case-insensitively.
func (s *Store) NameTaken(name string) bool {
	return lo.ContainsBy(s.entries, func(g models.GameSession) bool {
		return util.SameName(g.Name, name)
	})
}

// Totals sums each player's parsed scores across all rounds. Missing or
// unparseable entries count as 0.
func Totals(g *models.GameSession) map[string]int {
	if g == nil {
		return map[string]int{}
	}
	return lo.Associate(g.Players, func(p models.Player) (string, int) {
		return p.Name, lo.SumBy(g.Rounds, func(r models.Round) int {
			return util.ParseScore(r.Scores[p.Name])
		})
	})
}

// Winners returns every player holding the minimum total, in player
// order. Rummikub scoring is lowest-wins. The stored Winner field keeps a
// single representative name; this is the tie-aware display set.
func Winners(g *models.GameSession) []string {
	if g == nil || len(g.Players) == 0 {
		return nil
	}
	totals := Totals(g)
	low := lo.Min(lo.Values(totals))
	winners := lo.FilterMap(g.Players, func(p models.Player, _ int) (string, bool) {
		return p.Name, totals[p.Name] == low
	})
	return winners
}
