package roster

import (
	"slices"
	"testing"

	models "github.com/christophrus/rummikub-tracker/internal/models"
)

func names(players []models.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Name
	}
	return out
}

func rosterOf(n ...string) []models.Player {
	out := make([]models.Player, len(n))
	for i, name := range n {
		out[i] = models.Player{Name: name}
	}
	return out
}

func TestAddRespectsCeiling(t *testing.T) {
	players := rosterOf("a", "b", "c", "d", "e", "f")
	got := Add(players)
	if len(got) != 6 {
		t.Errorf("Add at ceiling grew roster to %d", len(got))
	}
	got = Add(rosterOf("a"))
	if len(got) != 2 {
		t.Errorf("Add below ceiling: len = %d, want 2", len(got))
	}
}

func TestRemoveRespectsFloor(t *testing.T) {
	players := rosterOf("a")
	if got := Remove(players, 0); len(got) != 1 {
		t.Error("Remove at the one-player floor should be a no-op")
	}
	got := Remove(rosterOf("a", "b", "c"), 1)
	want := []string{"a", "c"}
	if !slices.Equal(names(got), want) {
		t.Errorf("Remove(1) = %v, want %v", names(got), want)
	}
	if got := Remove(rosterOf("a", "b"), 5); len(got) != 2 {
		t.Error("Remove out of range should be a no-op")
	}
}

func TestUpdateDoesNotAliasInput(t *testing.T) {
	players := rosterOf("a", "b")
	got := Update(players, 0, "name", "z")
	if players[0].Name != "a" {
		t.Error("Update mutated its input")
	}
	if got[0].Name != "z" {
		t.Errorf("Update result name = %q, want z", got[0].Name)
	}
	got = Update(players, 1, "image", "data:img")
	if got[1].Image != "data:img" {
		t.Error("Update image field not applied")
	}
}

func TestMoveUpDown(t *testing.T) {
	players := rosterOf("a", "b", "c")
	if got := MoveUp(players, 0); !slices.Equal(names(got), []string{"a", "b", "c"}) {
		t.Error("MoveUp(0) should be a no-op")
	}
	if got := MoveUp(players, 2); !slices.Equal(names(got), []string{"a", "c", "b"}) {
		t.Errorf("MoveUp(2) = %v", names(got))
	}
	if got := MoveDown(players, 2); !slices.Equal(names(got), []string{"a", "b", "c"}) {
		t.Error("MoveDown(last) should be a no-op")
	}
	if got := MoveDown(players, 0); !slices.Equal(names(got), []string{"b", "a", "c"}) {
		t.Errorf("MoveDown(0) = %v", names(got))
	}
}

func TestReorder(t *testing.T) {
	players := rosterOf("a", "b", "c", "d")
	cases := []struct {
		from, to int
		want     []string
	}{
		{0, 2, []string{"b", "c", "a", "d"}},
		{3, 0, []string{"d", "a", "b", "c"}},
		{-1, 2, []string{"a", "b", "c", "d"}},
		{1, 1, []string{"a", "b", "c", "d"}},
	}
	for _, c := range cases {
		got := Reorder(players, c.from, c.to)
		if !slices.Equal(names(got), c.want) {
			t.Errorf("Reorder(%d, %d) = %v, want %v", c.from, c.to, names(got), c.want)
		}
	}
}

func TestAddSaved(t *testing.T) {
	players := rosterOf("Alice", "")
	got, ok := AddSaved(players, models.Player{Name: "Bob", Image: "img"})
	if !ok || got[1].Name != "Bob" || got[1].Image != "img" {
		t.Errorf("AddSaved should fill the blank slot, got %v ok=%v", names(got), ok)
	}

	_, ok = AddSaved(rosterOf("Alice"), models.Player{Name: "alice"})
	if ok {
		t.Error("AddSaved must reject a case-insensitive duplicate")
	}

	full := rosterOf("a", "b", "c", "d", "e", "f")
	_, ok = AddSaved(full, models.Player{Name: "g"})
	if ok {
		t.Error("AddSaved must reject a full roster")
	}

	got, ok = AddSaved(rosterOf("Alice"), models.Player{Name: "Bob"})
	if !ok || len(got) != 2 {
		t.Errorf("AddSaved should append when no blank slot exists, got %v", names(got))
	}
}

func TestValidateMinPlayers(t *testing.T) {
	players := []models.Player{{Name: "Alice"}, {Name: "  "}, {Name: "Bob"}, {Name: ""}}
	got := ValidateMinPlayers(players, 2)
	if !slices.Equal(names(got), []string{"Alice", "Bob"}) {
		t.Errorf("ValidateMinPlayers = %v", names(got))
	}
	if got := ValidateMinPlayers([]models.Player{{Name: "Alice"}, {Name: ""}}, 2); got != nil {
		t.Error("expected nil when fewer than min players remain")
	}
}
