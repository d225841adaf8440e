package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectionValid(t *testing.T) {
	assert.True(t, DirectionIncoming.Valid())
	assert.True(t, DirectionOutgoing.Valid())
	assert.False(t, Direction("sideways").Valid())
	assert.False(t, Direction("").Valid())
}

func TestLabelValid(t *testing.T) {
	for _, l := range []Label{LabelOffshoreYes, LabelOffshoreSuspect, LabelOffshoreNo} {
		assert.True(t, l.Valid(), "label %q", l)
	}
	// ERROR is produced internally, never accepted from a classifier.
	assert.False(t, LabelError.Valid())
	assert.False(t, Label("MAYBE").Valid())
}

func TestGenerateHashStable(t *testing.T) {
	txn := Transaction{
		ID:           "incoming-1",
		Direction:    DirectionIncoming,
		Counterparty: "Cayman Islands Trust Ltd",
		Amount:       12500000,
		Extra: map[string]string{
			"Назначение платежа": "Consulting services",
			"Валюта":             "KZT",
			"Курс":               "1.0",
		},
	}

	first := txn.GenerateHash()
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, txn.GenerateHash())
	}
}

func TestGenerateHashDistinguishes(t *testing.T) {
	a := Transaction{ID: "incoming-1", Amount: 100}
	b := Transaction{ID: "incoming-1", Amount: 200}
	assert.NotEqual(t, a.GenerateHash(), b.GenerateHash())

	c := a
	c.Extra = map[string]string{"Примечание": "x"}
	assert.NotEqual(t, a.GenerateHash(), c.GenerateHash())
}

func TestScenarioNumber(t *testing.T) {
	assert.Equal(t, 1, ScenarioIncomingOffshore.Number())
	assert.Equal(t, 2, ScenarioOutgoingOffshore.Number())
	assert.Equal(t, 3, ScenarioGenericOffshore.Number())
	assert.Equal(t, 0, ScenarioNone.Number())
}
