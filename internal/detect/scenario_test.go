package detect

import (
	"testing"

	"github.com/kzcompliance/offshore-radar/internal/model"
)

func TestClassifyScenario(t *testing.T) {
	tests := []struct {
		name          string
		direction     model.Direction
		dictionaryHit bool
		swiftOffshore bool
		want          model.Scenario
	}{
		{"no signals incoming", model.DirectionIncoming, false, false, model.ScenarioNone},
		{"no signals outgoing", model.DirectionOutgoing, false, false, model.ScenarioNone},
		{"incoming dictionary hit", model.DirectionIncoming, true, false, model.ScenarioIncomingOffshore},
		{"incoming swift only", model.DirectionIncoming, false, true, model.ScenarioIncomingOffshore},
		{"outgoing dictionary hit", model.DirectionOutgoing, true, false, model.ScenarioOutgoingOffshore},
		{"outgoing swift only", model.DirectionOutgoing, false, true, model.ScenarioOutgoingOffshore},
		{"unknown direction with signal", model.Direction("internal"), true, true, model.ScenarioGenericOffshore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyScenario(tt.direction, tt.dictionaryHit, tt.swiftOffshore)
			if got != tt.want {
				t.Errorf("ClassifyScenario() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScenarioNumbers(t *testing.T) {
	tests := []struct {
		scenario model.Scenario
		want     int
	}{
		{model.ScenarioIncomingOffshore, 1},
		{model.ScenarioOutgoingOffshore, 2},
		{model.ScenarioGenericOffshore, 3},
		{model.ScenarioNone, 0},
	}
	for _, tt := range tests {
		if got := tt.scenario.Number(); got != tt.want {
			t.Errorf("%s.Number() = %d, want %d", tt.scenario, got, tt.want)
		}
	}
}
