package dice

import (
	"math/rand"

	"github.com/wfunc/catan/game"
)

// 随机值供应方。都是零参调用，方便测试时替换成确定性的函数。

// NewRoller returns a supplier summing n dice with the given number of
// sides.
func NewRoller(n, sides int, rng *rand.Rand) func() int {
	return func() int {
		total := 0
		for i := 0; i < n; i++ {
			total += rng.Intn(sides) + 1
		}
		return total
	}
}

// deckContents 标准发展卡构成：14 骑士、5 分数卡、进步卡各 2 张
var deckContents = map[game.DevelopmentCardType]int{
	game.CardKnight:       14,
	game.CardVictoryPoint: 5,
	game.CardRoadBuilding: 2,
	game.CardInvention:    2,
	game.CardMonopoly:     2,
}

// NewDeck returns a development card supplier drawing from a shuffled
// standard deck. The deck is reshuffled when exhausted.
func NewDeck(rng *rand.Rand) func() game.DevelopmentCardType {
	var cards []game.DevelopmentCardType
	refill := func() {
		cards = cards[:0]
		for t, n := range deckContents {
			for i := 0; i < n; i++ {
				cards = append(cards, t)
			}
		}
		rng.Shuffle(len(cards), func(i, j int) {
			cards[i], cards[j] = cards[j], cards[i]
		})
	}
	refill()

	return func() game.DevelopmentCardType {
		if len(cards) == 0 {
			refill()
		}
		card := cards[len(cards)-1]
		cards = cards[:len(cards)-1]
		return card
	}
}

// DeckSize returns the number of cards in one full deck.
func DeckSize() int {
	total := 0
	for _, n := range deckContents {
		total += n
	}
	return total
}
