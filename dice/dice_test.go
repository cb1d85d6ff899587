package dice

import (
	"math/rand"
	"testing"

	"github.com/wfunc/catan/game"
)

func TestNewRoller_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	roll := NewRoller(2, 6, rng)

	for i := 0; i < 1000; i++ {
		v := roll()
		if v < 2 || v > 12 {
			t.Fatalf("Roll %d out of bounds [2,12]", v)
		}
	}
}

func TestNewRoller_SingleDie(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	roll := NewRoller(1, 6, rng)

	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := roll()
		if v < 1 || v > 6 {
			t.Fatalf("Roll %d out of bounds [1,6]", v)
		}
		seen[v] = true
	}
	for face := 1; face <= 6; face++ {
		if !seen[face] {
			t.Errorf("Face %d never rolled in 1000 tries", face)
		}
	}
}

func TestNewDeck_FullDeckComposition(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	draw := NewDeck(rng)

	counts := make(map[game.DevelopmentCardType]int)
	for i := 0; i < DeckSize(); i++ {
		counts[draw()]++
	}

	if counts[game.CardKnight] != 14 {
		t.Errorf("Expected 14 knights in a full deck, got %d", counts[game.CardKnight])
	}
	if counts[game.CardVictoryPoint] != 5 {
		t.Errorf("Expected 5 victory point cards, got %d", counts[game.CardVictoryPoint])
	}
	for _, card := range []game.DevelopmentCardType{game.CardRoadBuilding, game.CardInvention, game.CardMonopoly} {
		if counts[card] != 2 {
			t.Errorf("Expected 2 %s cards, got %d", card, counts[card])
		}
	}
}

func TestNewDeck_ReshufflesWhenEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	draw := NewDeck(rng)

	// Drawing past one full deck must not panic and keeps yielding cards.
	counts := make(map[game.DevelopmentCardType]int)
	for i := 0; i < 2*DeckSize(); i++ {
		counts[draw()]++
	}

	if counts[game.CardKnight] != 28 {
		t.Errorf("Expected 28 knights across two decks, got %d", counts[game.CardKnight])
	}
}
