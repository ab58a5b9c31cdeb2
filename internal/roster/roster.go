// Package roster holds the setup-time player list operations. Every
// function returns a fresh slice and leaves its input untouched.
package roster

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	constants "github.com/christophrus/rummikub-tracker/internal/constants"
	models "github.com/christophrus/rummikub-tracker/internal/models"
	util "github.com/christophrus/rummikub-tracker/internal/util"
)

// Add appends an empty player slot. No-op at the table limit.
func Add(players []models.Player) []models.Player {
	if len(players) >= constants.MaxPlayers {
		return players
	}
	out := slices.Clone(players)
	return append(out, models.Player{})
}

// Remove drops the player at index. No-op on an out-of-range index or if
// it would leave the roster empty.
func Remove(players []models.Player, index int) []models.Player {
	if index < 0 || index >= len(players) || len(players) <= 1 {
		return players
	}
	return lo.Filter(players, func(_ models.Player, i int) bool {
		return i != index
	})
}

// Update sets a single field ("name" or "image") on the player at index.
func Update(players []models.Player, index int, field, value string) []models.Player {
	if index < 0 || index >= len(players) {
		return players
	}
	out := slices.Clone(players)
	switch field {
	case "name":
		out[index].Name = value
	case "image":
		out[index].Image = value
	}
	return out
}

func MoveUp(players []models.Player, index int) []models.Player {
	if index <= 0 || index >= len(players) {
		return players
	}
	out := slices.Clone(players)
	out[index-1], out[index] = out[index], out[index-1]
	return out
}

func MoveDown(players []models.Player, index int) []models.Player {
	if index < 0 || index >= len(players)-1 {
		return players
	}
	out := slices.Clone(players)
	out[index], out[index+1] = out[index+1], out[index]
	return out
}

// Reorder moves the player at fromIndex to dropIndex (drag-and-drop
// semantics). A negative fromIndex means "nothing dragged" and is a no-op,
// as is dropping a player on itself.
func Reorder(players []models.Player, fromIndex, dropIndex int) []models.Player {
	if fromIndex < 0 || fromIndex == dropIndex ||
		fromIndex >= len(players) || dropIndex < 0 || dropIndex >= len(players) {
		return players
	}
	out := slices.Clone(players)
	moved := out[fromIndex]
	out = slices.Delete(out, fromIndex, fromIndex+1)
	return slices.Insert(out, dropIndex, moved)
}

// AddSaved fills the first blank slot with a saved player, or appends one.
// It refuses a duplicate name or a full roster; ok reports whether the
// roster changed.
func AddSaved(players []models.Player, saved models.Player) (out []models.Player, ok bool) {
	dupe := lo.ContainsBy(players, func(p models.Player) bool {
		return util.SameName(p.Name, saved.Name)
	})
	if dupe {
		return players, false
	}
	emptyIndex := slices.IndexFunc(players, func(p models.Player) bool {
		return strings.TrimSpace(p.Name) == ""
	})
	if emptyIndex >= 0 {
		out = slices.Clone(players)
		out[emptyIndex] = saved
		return out, true
	}
	if len(players) >= constants.MaxPlayers {
		return players, false
	}
	return append(slices.Clone(players), saved), true
}

// ValidateMinPlayers filters out blank rows and returns the remaining
// players, or nil if fewer than minPlayers are left. Unfilled slots are
// dropped silently rather than reported as an error.
func ValidateMinPlayers(players []models.Player, minPlayers int) []models.Player {
	valid := lo.Filter(players, func(p models.Player, _ int) bool {
		return strings.TrimSpace(p.Name) != ""
	})
	if len(valid) < minPlayers {
		return nil
	}
	return valid
}
