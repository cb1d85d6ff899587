package agent

// Objective is the phase tag telling an agent what kind of action is
// currently expected of it.
type Objective int

const (
	ObjectiveIdle Objective = iota
	ObjectiveDiceRoll
	ObjectiveRegularTurn
	ObjectivePlaceVillage
	ObjectivePlaceRoad
	ObjectiveAcceptTrade
	ObjectiveSelectRobberTile
	ObjectiveSelectCardToSteal
	ObjectiveDropCards
)

var objectiveNames = map[Objective]string{
	ObjectiveIdle:              "idle",
	ObjectiveDiceRoll:          "dice_roll",
	ObjectiveRegularTurn:       "regular_turn",
	ObjectivePlaceVillage:      "place_village",
	ObjectivePlaceRoad:         "place_road",
	ObjectiveAcceptTrade:       "accept_trade",
	ObjectiveSelectRobberTile:  "select_robber_tile",
	ObjectiveSelectCardToSteal: "select_card_to_steal",
	ObjectiveDropCards:         "drop_cards",
}

func (o Objective) String() string {
	if name, ok := objectiveNames[o]; ok {
		return name
	}
	return "unknown"
}

// allowedActions maps each objective to the action kinds an agent may
// answer it with.
var allowedActions = map[Objective]map[ActionKind]bool{
	ObjectiveDiceRoll: {
		KindRollDice: true,
	},
	ObjectiveRegularTurn: {
		KindEndTurn:             true,
		KindPlaceBuilding:       true,
		KindOfferTrade:          true,
		KindBuyDevelopmentCard:  true,
		KindPlayDevelopmentCard: true,
	},
	ObjectivePlaceVillage: {
		KindPlaceBuilding: true,
	},
	ObjectivePlaceRoad: {
		KindPlaceBuilding: true,
	},
	ObjectiveAcceptTrade: {
		KindAcceptTrade:  true,
		KindDeclineTrade: true,
	},
	ObjectiveSelectRobberTile: {
		KindSelectTile: true,
	},
	ObjectiveSelectCardToSteal: {
		KindSelectCard: true,
	},
	ObjectiveDropCards: {
		KindDropCards: true,
	},
}

// Allows reports whether an action kind is a valid answer to this objective.
func (o Objective) Allows(kind ActionKind) bool {
	return allowedActions[o][kind]
}
