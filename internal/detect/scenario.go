package detect

import "github.com/kzcompliance/offshore-radar/internal/model"

// ClassifyScenario maps a transaction's direction and signal snapshot to a
// scenario tag. Every call is a fresh, independent evaluation.
func ClassifyScenario(direction model.Direction, hasDictionaryHit, swiftIsOffshore bool) model.Scenario {
	if !hasDictionaryHit && !swiftIsOffshore {
		return model.ScenarioNone
	}

	switch direction {
	case model.DirectionIncoming:
		return model.ScenarioIncomingOffshore
	case model.DirectionOutgoing:
		return model.ScenarioOutgoingOffshore
	default:
		return model.ScenarioGenericOffshore
	}
}
