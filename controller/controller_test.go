package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wfunc/catan/agent"
	"github.com/wfunc/catan/config"
	"github.com/wfunc/catan/game"
)

// fixedDice returns a dice supplier always yielding the same value.
func fixedDice(v int) func() int {
	return func() int { return v }
}

func knightDeck() func() game.DevelopmentCardType {
	return func() game.DevelopmentCardType { return game.CardKnight }
}

func testConfig() config.GameConfig {
	cfg := config.DefaultGame()
	cfg.MinPlayers = 2
	return cfg
}

func newTestController(cfg config.GameConfig, dice func() int, players ...*game.Player) *GameController {
	grid := game.NewListGrid([]game.TileSpec{
		{Resource: game.ResourceLumber, RollNumber: 6, Slots: 8},
		{Resource: game.ResourceOre, RollNumber: 8, Slots: 8},
	})
	state := game.NewState(grid, players...)
	ctl := NewGameController(state, cfg, dice, knightDeck())
	ctl.InitAgents()
	return ctl
}

// drive registers a scripted action source on an agent. The script is
// consulted on every non-idle objective and its action is submitted on a
// separate goroutine, the same way a network relay would.
func drive(t *testing.T, ag *agent.Agent, script func(o agent.Objective) agent.Action) {
	t.Helper()
	ag.OnObjectiveChanged(func(o agent.Objective) {
		if o == agent.ObjectiveIdle {
			return
		}
		act := script(o)
		if act == nil {
			return
		}
		go func() {
			if err := ag.SubmitAction(act); err != nil {
				t.Errorf("scripted submit for %s failed: %v", ag.Player().ID, err)
			}
		}()
	})
}

func TestRun_NotEnoughPlayers(t *testing.T) {
	ctl := newTestController(testConfig(), fixedDice(6), game.NewPlayer("p1", "Alice"))

	err := ctl.Run(context.Background())
	if !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("Expected ErrNotEnoughPlayers, got %v", err)
	}
}

func TestWinners_NoPlayers(t *testing.T) {
	state := game.NewState(game.NewListGrid(nil))
	ctl := NewGameController(state, testConfig(), fixedDice(6), knightDeck())

	_, err := ctl.Winners()
	if !errors.Is(err, ErrNoPlayers) {
		t.Fatalf("Expected ErrNoPlayers, got %v", err)
	}
}

func TestWinners_KnightBonus(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	cfg := testConfig()
	cfg.VictoryPoints = 10
	ctl := newTestController(cfg, fixedDice(6), alice, bob)

	// Alice: 8 base points plus the army bonus reaches the threshold.
	alice.AddVictoryPoints(8)
	for i := 0; i < 3; i++ {
		alice.IncrementKnightsPlayed()
	}
	bob.AddVictoryPoints(8)

	winners, err := ctl.Winners()
	if err != nil {
		t.Fatalf("Winners failed: %v", err)
	}
	if len(winners) != 1 || winners[0] != alice {
		t.Fatalf("Expected Alice as sole winner, got %v", winners)
	}
}

func TestWinners_KnightBonusBelowThreshold(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	ctl := newTestController(testConfig(), fixedDice(6), alice, bob)

	alice.AddVictoryPoints(8)
	alice.IncrementKnightsPlayed()
	alice.IncrementKnightsPlayed() // only 2, below the threshold of 3

	winners, err := ctl.Winners()
	if err != nil {
		t.Fatalf("Winners failed: %v", err)
	}
	if len(winners) != 0 {
		t.Fatalf("Expected no winners below the knight threshold, got %v", winners)
	}
}

func TestWinners_KnightBonusTie(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	ctl := newTestController(testConfig(), fixedDice(6), alice, bob)

	// Both played 3 knights: the bonus goes to nobody.
	for i := 0; i < 3; i++ {
		alice.IncrementKnightsPlayed()
		bob.IncrementKnightsPlayed()
	}
	alice.AddVictoryPoints(8)
	bob.AddVictoryPoints(8)

	winners, err := ctl.Winners()
	if err != nil {
		t.Fatalf("Winners failed: %v", err)
	}
	if len(winners) != 0 {
		t.Fatalf("Expected no winners on a knight tie, got %v", winners)
	}
}

type fixedRoadBonus struct {
	holder *game.Player
}

func (f *fixedRoadBonus) LongestRoadHolder(players []*game.Player) *game.Player {
	return f.holder
}

func TestWinners_RoadBonus(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	ctl := newTestController(testConfig(), fixedDice(6), alice, bob)
	ctl.SetRoadBonusSource(&fixedRoadBonus{holder: bob})

	alice.AddVictoryPoints(9)
	bob.AddVictoryPoints(8)

	winners, err := ctl.Winners()
	if err != nil {
		t.Fatalf("Winners failed: %v", err)
	}
	if len(winners) != 1 || winners[0] != bob {
		t.Fatalf("Expected Bob to win via the road bonus, got %v", winners)
	}
}

func TestDistributeResources(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	ctl := newTestController(testConfig(), fixedDice(6), alice, bob)
	grid := ctl.State().Grid().(*game.ListGrid)

	// Alice: village on the lumber tile. Bob: city on the same tile.
	slot0, _ := grid.Intersection(0, 0)
	slot0.PlaceSettlement(&game.Settlement{Kind: game.SettlementVillage, Owner: alice})
	slot1, _ := grid.Intersection(0, 1)
	slot1.PlaceSettlement(&game.Settlement{Kind: game.SettlementCity, Owner: bob})

	ctl.DistributeResources(6)

	if got := alice.Resources()[game.ResourceLumber]; got != 1 {
		t.Errorf("Expected Alice to receive 1 lumber for her village, got %d", got)
	}
	if got := bob.Resources()[game.ResourceLumber]; got != 2 {
		t.Errorf("Expected Bob to receive 2 lumber for his city, got %d", got)
	}

	// A roll that triggers no settled tiles distributes nothing.
	ctl.DistributeResources(8)
	if got := alice.Resources()[game.ResourceOre]; got != 0 {
		t.Errorf("Expected no ore for Alice, got %d", got)
	}
}

func TestOfferTrade_AcceptedExchangesResources(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	ctl := newTestController(testConfig(), fixedDice(6), alice, bob)

	alice.AddResource(game.ResourceLumber, 2)
	bob.AddResource(game.ResourceOre, 1)

	bobAg, _ := ctl.AgentFor("p2")
	drive(t, bobAg, func(o agent.Objective) agent.Action {
		if o != agent.ObjectiveAcceptTrade {
			t.Errorf("Unexpected objective for Bob: %v", o)
			return nil
		}
		if bobAg.TradeOffer() == nil {
			t.Error("Expected the trade offer to be visible while deciding")
		}
		return agent.AcceptTradeAction{}
	})

	offer := game.ResourceSet{game.ResourceLumber: 2}
	request := game.ResourceSet{game.ResourceOre: 1}
	if err := ctl.OfferTrade(context.Background(), alice, offer, request); err != nil {
		t.Fatalf("OfferTrade failed: %v", err)
	}

	if got := alice.Resources()[game.ResourceOre]; got != 1 {
		t.Errorf("Expected Alice to hold 1 ore after the trade, got %d", got)
	}
	if got := alice.Resources()[game.ResourceLumber]; got != 0 {
		t.Errorf("Expected Alice to hold no lumber after the trade, got %d", got)
	}
	if got := bob.Resources()[game.ResourceLumber]; got != 2 {
		t.Errorf("Expected Bob to hold 2 lumber after the trade, got %d", got)
	}
	if bobAg.TradeOffer() != nil {
		t.Error("Expected the trade offer to be cleared after the exchange")
	}

	// Total card count is conserved.
	if total := alice.TotalResources() + bob.TotalResources(); total != 3 {
		t.Errorf("Expected 3 cards in play after the trade, got %d", total)
	}
}

func TestOfferTrade_AcceptWithoutFundsVoidsAndContinues(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	carol := game.NewPlayer("p3", "Carol")
	ctl := newTestController(testConfig(), fixedDice(6), alice, bob, carol)

	alice.AddResource(game.ResourceLumber, 1)
	carol.AddResource(game.ResourceOre, 1)
	// Bob accepts but has no ore: the exchange is voided and Carol is asked.

	bobAg, _ := ctl.AgentFor("p2")
	drive(t, bobAg, func(o agent.Objective) agent.Action {
		return agent.AcceptTradeAction{}
	})
	carolAg, _ := ctl.AgentFor("p3")
	drive(t, carolAg, func(o agent.Objective) agent.Action {
		return agent.AcceptTradeAction{}
	})

	offer := game.ResourceSet{game.ResourceLumber: 1}
	request := game.ResourceSet{game.ResourceOre: 1}
	if err := ctl.OfferTrade(context.Background(), alice, offer, request); err != nil {
		t.Fatalf("OfferTrade failed: %v", err)
	}

	if got := bob.TotalResources(); got != 0 {
		t.Errorf("Expected Bob untouched after the voided trade, got %d cards", got)
	}
	if got := alice.Resources()[game.ResourceOre]; got != 1 {
		t.Errorf("Expected the trade to complete with Carol, Alice has %d ore", got)
	}
	if got := carol.Resources()[game.ResourceLumber]; got != 1 {
		t.Errorf("Expected Carol to hold the offered lumber, got %d", got)
	}
}

func TestOfferTrade_AllDecline(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	carol := game.NewPlayer("p3", "Carol")
	ctl := newTestController(testConfig(), fixedDice(6), alice, bob, carol)

	alice.AddResource(game.ResourceLumber, 1)

	var mu sync.Mutex
	var asked []string
	decline := func(ag *agent.Agent) func(agent.Objective) agent.Action {
		return func(o agent.Objective) agent.Action {
			mu.Lock()
			asked = append(asked, ag.Player().ID)
			mu.Unlock()
			return agent.DeclineTradeAction{}
		}
	}
	bobAg, _ := ctl.AgentFor("p2")
	drive(t, bobAg, decline(bobAg))
	carolAg, _ := ctl.AgentFor("p3")
	drive(t, carolAg, decline(carolAg))

	offer := game.ResourceSet{game.ResourceLumber: 1}
	request := game.ResourceSet{game.ResourceOre: 1}
	if err := ctl.OfferTrade(context.Background(), alice, offer, request); err != nil {
		t.Fatalf("OfferTrade failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(asked) != 2 || asked[0] != "p2" || asked[1] != "p3" {
		t.Errorf("Expected candidates asked in turn order [p2 p3], got %v", asked)
	}
	if got := alice.Resources()[game.ResourceLumber]; got != 1 {
		t.Errorf("Expected Alice to keep her lumber, got %d", got)
	}
}

func TestRollSeven_DiscardsHalf(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	ctl := newTestController(testConfig(), fixedDice(7), alice, bob)
	grid := ctl.State().Grid().(*game.ListGrid)

	// Bob holds 9 cards, over the threshold of 7: he must drop 5 and keep 4.
	bob.AddResource(game.ResourceLumber, 5)
	bob.AddResource(game.ResourceOre, 4)

	bobAg, _ := ctl.AgentFor("p2")
	drive(t, bobAg, func(o agent.Objective) agent.Action {
		if o != agent.ObjectiveDropCards {
			t.Errorf("Unexpected objective for Bob: %v", o)
			return nil
		}
		return &agent.DropCardsAction{Cards: game.ResourceSet{
			game.ResourceLumber: 4,
			game.ResourceOre:    1,
		}}
	})

	tile, _ := grid.Tile(1)
	aliceAg, _ := ctl.AgentFor("p1")
	drive(t, aliceAg, func(o agent.Objective) agent.Action {
		switch o {
		case agent.ObjectiveSelectRobberTile:
			return &agent.SelectTileAction{Tile: tile}
		case agent.ObjectiveSelectCardToSteal:
			return &agent.SelectCardAction{Victim: bob, Resource: game.ResourceOre}
		default:
			t.Errorf("Unexpected objective for Alice: %v", o)
			return nil
		}
	})

	err := ctl.withActivePlayer(aliceAg, func() error {
		return ctl.rollSeven(context.Background(), aliceAg)
	})
	if err != nil {
		t.Fatalf("rollSeven failed: %v", err)
	}

	// 9 cards, 5 dropped, 1 stolen by Alice.
	if got := bob.TotalResources(); got != 3 {
		t.Errorf("Expected Bob to hold 3 cards after discard and steal, got %d", got)
	}
	if got := alice.Resources()[game.ResourceOre]; got != 1 {
		t.Errorf("Expected Alice to hold the stolen ore, got %d", got)
	}
	// The roller is still resolvable as a known agent.
	if _, ok := ctl.AgentFor("p1"); !ok {
		t.Error("Expected the active player to remain in the agent set")
	}
}

func TestRollSeven_WrongDropCountIsViolation(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	ctl := newTestController(testConfig(), fixedDice(7), alice, bob)

	bob.AddResource(game.ResourceLumber, 8)

	bobAg, _ := ctl.AgentFor("p2")
	drive(t, bobAg, func(o agent.Objective) agent.Action {
		// 8 cards held, 4 must go; dropping 2 is a violation.
		return &agent.DropCardsAction{Cards: game.ResourceSet{game.ResourceLumber: 2}}
	})

	aliceAg, _ := ctl.AgentFor("p1")
	err := ctl.withActivePlayer(aliceAg, func() error {
		return ctl.rollSeven(context.Background(), aliceAg)
	})

	var violation *agent.ProtocolViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("Expected ProtocolViolationError, got %v", err)
	}
	if violation.PlayerID != "p2" {
		t.Errorf("Expected the violation to name p2, got %s", violation.PlayerID)
	}
	if got := bob.TotalResources(); got != 8 {
		t.Errorf("Expected Bob's hand untouched after the violation, got %d", got)
	}
}

func TestRollSeven_BelowThresholdSkipsDiscard(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	ctl := newTestController(testConfig(), fixedDice(7), alice, bob)

	// Exactly at the threshold: no discard demanded.
	bob.AddResource(game.ResourceLumber, 7)

	bobAg, _ := ctl.AgentFor("p2")
	drive(t, bobAg, func(o agent.Objective) agent.Action {
		t.Errorf("Bob should not be asked anything, got objective %v", o)
		return nil
	})

	aliceAg, _ := ctl.AgentFor("p1")
	drive(t, aliceAg, func(o agent.Objective) agent.Action {
		switch o {
		case agent.ObjectiveSelectRobberTile:
			return &agent.SelectTileAction{}
		case agent.ObjectiveSelectCardToSteal:
			return &agent.SelectCardAction{}
		default:
			return nil
		}
	})

	err := ctl.withActivePlayer(aliceAg, func() error {
		return ctl.rollSeven(context.Background(), aliceAg)
	})
	if err != nil {
		t.Fatalf("rollSeven failed: %v", err)
	}
	if got := bob.TotalResources(); got != 7 {
		t.Errorf("Expected Bob to keep all 7 cards, got %d", got)
	}
}

// activeRecorder tracks every active-player change for invariant checks.
type activeRecorder struct {
	mu     sync.Mutex
	active []string
	rounds []int
}

func (r *activeRecorder) ActivePlayerChanged(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = append(r.active, playerID)
}

func (r *activeRecorder) DiceRolled(playerID string, value int) {}

func (r *activeRecorder) RoundAdvanced(round int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds = append(r.rounds, round)
}

func TestRun_FullGame(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")

	cfg := testConfig()
	cfg.VictoryPoints = 2 // two opening villages reach the target

	ctl := newTestController(cfg, fixedDice(6), alice, bob)
	grid := ctl.State().Grid().(*game.ListGrid)

	recorder := &activeRecorder{}
	ctl.AddObserver(recorder)

	// Each player claims distinct slots and edges in placement order.
	script := func(id string, firstSlot int) func(agent.Objective) agent.Action {
		slot := firstSlot
		road := 0
		return func(o agent.Objective) agent.Action {
			switch o {
			case agent.ObjectivePlaceVillage:
				in, err := grid.Intersection(0, slot)
				if err != nil {
					t.Errorf("no free slot for %s: %v", id, err)
					return nil
				}
				slot++
				return &agent.PlaceBuildingAction{Building: agent.BuildingVillage, Intersection: in}
			case agent.ObjectivePlaceRoad:
				road++
				return &agent.PlaceBuildingAction{
					Building: agent.BuildingRoad,
					Edge:     fmt.Sprintf("%s-e%d", id, road),
				}
			case agent.ObjectiveDiceRoll:
				return agent.RollDiceAction{}
			case agent.ObjectiveRegularTurn:
				return agent.EndTurnAction{}
			default:
				t.Errorf("Unexpected objective for %s: %v", id, o)
				return nil
			}
		}
	}

	aliceAg, _ := ctl.AgentFor("p1")
	drive(t, aliceAg, script("p1", 0))
	bobAg, _ := ctl.AgentFor("p2")
	drive(t, bobAg, script("p2", 4))

	done := make(chan error, 1)
	go func() {
		done <- ctl.Run(context.Background())
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not finish")
	}

	// Both players reach the target; the first in turn order wins.
	if winner := ctl.State().Winner(); winner != alice {
		t.Fatalf("Expected Alice to win, got %v", winner)
	}
	if alice.VictoryPoints() != 2 {
		t.Errorf("Expected Alice at 2 victory points, got %d", alice.VictoryPoints())
	}
	if got := grid.RoadCount(alice); got != 2 {
		t.Errorf("Expected Alice to own 2 roads, got %d", got)
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.active) == 0 || recorder.active[len(recorder.active)-1] != "" {
		t.Error("Expected the active slot to be cleared when the game ends")
	}
	if len(recorder.rounds) == 0 || recorder.rounds[0] != 1 {
		t.Errorf("Expected the first announced round to be 1, got %v", recorder.rounds)
	}

	// The same controller cannot be started twice.
	if err := ctl.Run(context.Background()); !errors.Is(err, ErrGameAlreadyStarted) {
		t.Fatalf("Expected ErrGameAlreadyStarted on a second Run, got %v", err)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	ctl := newTestController(testConfig(), fixedDice(6), alice, bob)

	// Nobody answers any objective: Run blocks until the context ends.
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- ctl.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestBuyDevelopmentCard(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	ctl := newTestController(testConfig(), fixedDice(6), alice, bob)

	// Without funds the purchase fails and nothing changes.
	if err := ctl.buyDevelopmentCard(alice); !errors.Is(err, game.ErrInsufficientResources) {
		t.Fatalf("Expected ErrInsufficientResources, got %v", err)
	}
	if alice.TotalDevelopmentCards() != 0 {
		t.Error("Expected no card granted on a failed purchase")
	}

	alice.AddResource(game.ResourceWool, 1)
	alice.AddResource(game.ResourceGrain, 1)
	alice.AddResource(game.ResourceOre, 1)

	if err := ctl.buyDevelopmentCard(alice); err != nil {
		t.Fatalf("buyDevelopmentCard failed: %v", err)
	}
	if alice.TotalResources() != 0 {
		t.Errorf("Expected the cost to be deducted, %d cards left", alice.TotalResources())
	}
	if got := alice.DevelopmentCards()[game.CardKnight]; got != 1 {
		t.Errorf("Expected 1 knight card, got %d", got)
	}
}

func TestPlayKnightMovesRobber(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	ctl := newTestController(testConfig(), fixedDice(6), alice, bob)

	alice.AddDevelopmentCard(game.CardKnight)
	bob.AddResource(game.ResourceOre, 1)

	aliceAg, _ := ctl.AgentFor("p1")
	drive(t, aliceAg, func(o agent.Objective) agent.Action {
		switch o {
		case agent.ObjectiveSelectRobberTile:
			return &agent.SelectTileAction{}
		case agent.ObjectiveSelectCardToSteal:
			return &agent.SelectCardAction{Victim: bob, Resource: game.ResourceOre}
		default:
			return nil
		}
	})

	err := ctl.withActivePlayer(aliceAg, func() error {
		return ctl.playDevelopmentCard(context.Background(), aliceAg, game.CardKnight)
	})
	if err != nil {
		t.Fatalf("playDevelopmentCard failed: %v", err)
	}

	if alice.KnightsPlayed() != 1 {
		t.Errorf("Expected 1 knight played, got %d", alice.KnightsPlayed())
	}
	if got := alice.Resources()[game.ResourceOre]; got != 1 {
		t.Errorf("Expected Alice to hold the stolen ore, got %d", got)
	}
	if alice.TotalDevelopmentCards() != 0 {
		t.Error("Expected the played knight to leave Alice's hand")
	}
}

func TestApplySteal_MissingCardIsNoop(t *testing.T) {
	alice := game.NewPlayer("p1", "Alice")
	bob := game.NewPlayer("p2", "Bob")
	ctl := newTestController(testConfig(), fixedDice(6), alice, bob)

	err := ctl.applySteal(alice, &agent.SelectCardAction{Victim: bob, Resource: game.ResourceOre})
	if err != nil {
		t.Fatalf("applySteal should not fail on a missing card, got: %v", err)
	}
	if alice.TotalResources() != 0 {
		t.Error("Expected no card gained from an empty victim")
	}
}
