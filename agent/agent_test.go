package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wfunc/catan/game"
)

func newTestAgent() *Agent {
	return New(game.NewPlayer("p1", "Alice"))
}

func TestAgent_SubmitWithoutObjective(t *testing.T) {
	ag := newTestAgent()

	err := ag.SubmitAction(RollDiceAction{})

	var violation *ProtocolViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("Expected ProtocolViolationError, got %v", err)
	}
	if violation.PlayerID != "p1" {
		t.Errorf("Expected violation to name player p1, got %s", violation.PlayerID)
	}
}

func TestAgent_SubmitWrongKind(t *testing.T) {
	ag := newTestAgent()
	ag.SetObjective(ObjectiveDiceRoll)

	err := ag.SubmitAction(EndTurnAction{})

	var violation *ProtocolViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("Expected ProtocolViolationError, got %v", err)
	}
	if violation.Objective != ObjectiveDiceRoll {
		t.Errorf("Expected violation objective %v, got %v", ObjectiveDiceRoll, violation.Objective)
	}
	if violation.Got != KindEndTurn {
		t.Errorf("Expected violation action %v, got %v", KindEndTurn, violation.Got)
	}
}

func TestAgent_Rendezvous(t *testing.T) {
	ag := newTestAgent()
	ag.SetObjective(ObjectiveDiceRoll)

	submitErr := make(chan error, 1)
	go func() {
		submitErr <- ag.SubmitAction(RollDiceAction{})
	}()

	act, err := ag.WaitForNextAction(context.Background())
	if err != nil {
		t.Fatalf("WaitForNextAction failed: %v", err)
	}
	if act.Kind() != KindRollDice {
		t.Errorf("Expected a roll dice action, got %v", act.Kind())
	}
	if err := <-submitErr; err != nil {
		t.Errorf("SubmitAction should succeed once received, got: %v", err)
	}
}

func TestAgent_SubmitBlocksUntilReceived(t *testing.T) {
	ag := newTestAgent()
	ag.SetObjective(ObjectiveRegularTurn)

	delivered := make(chan struct{})
	go func() {
		ag.SubmitAction(EndTurnAction{})
		close(delivered)
	}()

	select {
	case <-delivered:
		t.Fatal("SubmitAction should block until the orchestrator receives the action")
	case <-time.After(20 * time.Millisecond):
	}

	if _, err := ag.WaitForNextAction(context.Background()); err != nil {
		t.Fatalf("WaitForNextAction failed: %v", err)
	}

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("SubmitAction did not return after the action was received")
	}
}

func TestAgent_DuplicateSubmitDoesNotAnswerNextObjective(t *testing.T) {
	ag := newTestAgent()
	ag.SetObjective(ObjectiveRegularTurn)

	// First submission is consumed normally.
	go ag.SubmitAction(EndTurnAction{})
	if _, err := ag.WaitForNextAction(context.Background()); err != nil {
		t.Fatalf("WaitForNextAction failed: %v", err)
	}

	// A duplicate passes the kind check while the turn is still open and
	// parks in the rendezvous with nobody waiting.
	dupErr := make(chan error, 1)
	go func() {
		dupErr <- ag.SubmitAction(EndTurnAction{})
	}()
	time.Sleep(20 * time.Millisecond)

	// The objective moves on. The parked duplicate must not surface as the
	// answer to the new objective.
	ag.SetObjective(ObjectiveDiceRoll)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if act, err := ag.WaitForNextAction(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected no action for the new objective, got act=%v err=%v", act, err)
	}

	var violation *ProtocolViolationError
	select {
	case err := <-dupErr:
		if !errors.As(err, &violation) {
			t.Fatalf("Expected the duplicate submit to fail with a ProtocolViolationError, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Duplicate submit did not return; it would block the submitter forever")
	}
}

func TestAgent_ParkedSubmitReleasedOnObjectiveChange(t *testing.T) {
	ag := newTestAgent()
	ag.SetObjective(ObjectiveRegularTurn)

	// Nobody is waiting; the submit parks in the rendezvous.
	parked := make(chan error, 1)
	go func() {
		parked <- ag.SubmitAction(EndTurnAction{})
	}()
	time.Sleep(20 * time.Millisecond)

	// Resetting to idle must release the submitter with an error instead of
	// leaving it blocked.
	ag.SetObjective(ObjectiveIdle)

	select {
	case err := <-parked:
		var violation *ProtocolViolationError
		if !errors.As(err, &violation) {
			t.Fatalf("Expected ProtocolViolationError, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Submit stayed blocked after the objective changed")
	}
}

func TestAgent_WaitForNextAction_ContextCancel(t *testing.T) {
	ag := newTestAgent()
	ag.SetObjective(ObjectiveDiceRoll)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ag.WaitForNextAction(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestAgent_ObjectiveListener(t *testing.T) {
	ag := newTestAgent()

	var seen []Objective
	ag.OnObjectiveChanged(func(o Objective) {
		seen = append(seen, o)
	})

	ag.SetObjective(ObjectivePlaceVillage)
	ag.SetObjective(ObjectiveIdle)

	if len(seen) != 2 || seen[0] != ObjectivePlaceVillage || seen[1] != ObjectiveIdle {
		t.Errorf("Expected listener to see [PlaceVillage, Idle], got %v", seen)
	}
}

func TestAgent_TradeOfferLifecycle(t *testing.T) {
	ag := newTestAgent()

	if ag.TradeOffer() != nil {
		t.Fatal("Expected no trade offer initially")
	}

	offer := &game.TradeOffer{
		From:    game.NewPlayer("p2", "Bob"),
		Offer:   game.ResourceSet{game.ResourceLumber: 1},
		Request: game.ResourceSet{game.ResourceOre: 1},
	}
	ag.SetTradeOffer(offer)

	if got := ag.TradeOffer(); got != offer {
		t.Error("Expected the attached trade offer to be visible")
	}

	ag.ClearTradeOffer()
	if ag.TradeOffer() != nil {
		t.Error("Expected the trade offer to be cleared")
	}
}

func TestObjective_Allows(t *testing.T) {
	cases := []struct {
		objective Objective
		kind      ActionKind
		want      bool
	}{
		{ObjectiveDiceRoll, KindRollDice, true},
		{ObjectiveDiceRoll, KindEndTurn, false},
		{ObjectiveRegularTurn, KindEndTurn, true},
		{ObjectiveRegularTurn, KindPlaceBuilding, true},
		{ObjectiveRegularTurn, KindOfferTrade, true},
		{ObjectiveRegularTurn, KindRollDice, false},
		{ObjectiveAcceptTrade, KindAcceptTrade, true},
		{ObjectiveAcceptTrade, KindDeclineTrade, true},
		{ObjectiveAcceptTrade, KindEndTurn, false},
		{ObjectiveDropCards, KindDropCards, true},
		{ObjectiveSelectRobberTile, KindSelectTile, true},
		{ObjectiveSelectCardToSteal, KindSelectCard, true},
		{ObjectivePlaceVillage, KindPlaceBuilding, true},
		{ObjectivePlaceRoad, KindPlaceBuilding, true},
	}

	for _, c := range cases {
		if got := c.objective.Allows(c.kind); got != c.want {
			t.Errorf("%v.Allows(%v) = %v, want %v", c.objective, c.kind, got, c.want)
		}
	}
}
