package llm

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kzcompliance/offshore-radar/internal/common"
	"github.com/kzcompliance/offshore-radar/internal/model"
	"github.com/kzcompliance/offshore-radar/internal/registry"
)

// mockClient lets tests script responses and failures per call.
type mockClient struct {
	responses []ClassificationResponse
	errs      []error
	calls     int
}

func (m *mockClient) Classify(_ context.Context, _, _ string) (ClassificationResponse, error) {
	idx := m.calls
	m.calls++
	if idx < len(m.errs) && m.errs[idx] != nil {
		return ClassificationResponse{}, m.errs[idx]
	}
	if idx < len(m.responses) {
		return m.responses[idx], nil
	}
	if len(m.responses) > 0 {
		return m.responses[len(m.responses)-1], nil
	}
	return ClassificationResponse{}, errors.New("unscripted call")
}

func newTestClassifier(t *testing.T, client Client) *Classifier {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)

	c, err := NewClassifier(Config{
		APIKey:     "test-key",
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		RateLimit:  10000,
	}, reg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	c.client = client
	return c
}

func testTransaction(id string) model.Transaction {
	return model.Transaction{
		ID:             id,
		Counterparty:   "Cayman Islands Trust Ltd",
		BankIdentifier: "ABCAKYXX",
		Direction:      model.DirectionIncoming,
		Amount:         7_500_000,
	}
}

func testAnalysis() model.PreliminaryAnalysis {
	return model.PreliminaryAnalysis{
		Swift:         &model.CountrySignal{Code: "KY", Name: "CAYMAN ISLANDS (THE)", IsOffshore: true},
		Matches:       []model.MatchSignal{{Field: "counterparty", Jurisdiction: "CAYMAN ISLANDS (THE)", Similarity: 0.95}},
		MatchedFields: []string{"counterparty"},
		Scenario:      model.ScenarioIncomingOffshore,
		Confidence:    0.85,
	}
}

func TestClassifierSuccess(t *testing.T) {
	client := &mockClient{
		responses: []ClassificationResponse{{
			Label:       "OFFSHORE_YES",
			Confidence:  0.92,
			Explanation: "SWIFT and counterparty both point to the Cayman Islands",
			Sources:     []string{"https://example.com/ky"},
		}},
	}
	c := newTestClassifier(t, client)

	result, err := c.Classify(context.Background(), testTransaction("tx-1"), testAnalysis(), nil)
	require.NoError(t, err)

	assert.Equal(t, model.LabelOffshoreYes, result.Label)
	assert.Equal(t, model.SourceClassifier, result.Source)
	assert.Equal(t, model.ScenarioIncomingOffshore, result.Scenario)
	assert.InDelta(t, 0.92, result.Confidence, 1e-9)
	assert.Equal(t, 1, client.calls)
}

func TestClassifierRetriesTransientErrors(t *testing.T) {
	client := &mockClient{
		errs: []error{common.ErrEmptyResponse, common.ErrMalformedResponse, nil},
		responses: []ClassificationResponse{
			{}, {},
			{Label: "OFFSHORE_SUSPECT", Confidence: 0.6, Explanation: "partial signals"},
		},
	}
	c := newTestClassifier(t, client)

	result, err := c.Classify(context.Background(), testTransaction("tx-2"), testAnalysis(), nil)
	require.NoError(t, err)
	assert.Equal(t, model.LabelOffshoreSuspect, result.Label)
	assert.Equal(t, 3, client.calls)
}

func TestClassifierRetriesConnectionErrors(t *testing.T) {
	refused := &url.Error{
		Op:  "Post",
		URL: "https://api.openai.com/v1/chat/completions",
		Err: errors.New("connect: connection refused"),
	}
	client := &mockClient{
		errs: []error{refused, refused, nil},
		responses: []ClassificationResponse{
			{}, {},
			{Label: "OFFSHORE_NO", Confidence: 0.2, Explanation: "no offshore signals"},
		},
	}
	c := newTestClassifier(t, client)

	result, err := c.Classify(context.Background(), testTransaction("tx-net"), testAnalysis(), nil)
	require.NoError(t, err)
	assert.Equal(t, model.LabelOffshoreNo, result.Label)
	assert.Equal(t, 3, client.calls, "transport failures get the full attempt budget")
}

func TestClassifierGivesUpAfterMaxAttempts(t *testing.T) {
	client := &mockClient{
		errs: []error{common.ErrEmptyResponse, common.ErrEmptyResponse, common.ErrEmptyResponse},
	}
	c := newTestClassifier(t, client)

	_, err := c.Classify(context.Background(), testTransaction("tx-3"), testAnalysis(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrClassificationFailed)
	assert.Equal(t, 3, client.calls)
}

func TestClassifierDoesNotRetryPermanentErrors(t *testing.T) {
	client := &mockClient{
		errs: []error{common.ErrMissingAPIKey, common.ErrMissingAPIKey, common.ErrMissingAPIKey},
	}
	c := newTestClassifier(t, client)

	_, err := c.Classify(context.Background(), testTransaction("tx-4"), testAnalysis(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, client.calls)
}

func TestClassifierCachesByTransactionHash(t *testing.T) {
	client := &mockClient{
		responses: []ClassificationResponse{{
			Label: "OFFSHORE_YES", Confidence: 0.9, Explanation: "registry hit",
		}},
	}
	c := newTestClassifier(t, client)

	txn := testTransaction("tx-5")
	first, err := c.Classify(context.Background(), txn, testAnalysis(), nil)
	require.NoError(t, err)

	second, err := c.Classify(context.Background(), txn, testAnalysis(), nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.calls, "second call should be served from cache")
}

func TestClassifierDeterministicWithFixedClock(t *testing.T) {
	fixed := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	script := func() *mockClient {
		return &mockClient{responses: []ClassificationResponse{{
			Label: "OFFSHORE_YES", Confidence: 0.9, Explanation: "registry hit",
		}}}
	}

	a := newTestClassifier(t, script())
	a.now = func() time.Time { return fixed }
	b := newTestClassifier(t, script())
	b.now = func() time.Time { return fixed }

	first, err := a.Classify(context.Background(), testTransaction("tx-6"), testAnalysis(), nil)
	require.NoError(t, err)
	second, err := b.Classify(context.Background(), testTransaction("tx-6"), testAnalysis(), nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNewClassifierRequiresAPIKey(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)

	_, err = NewClassifier(Config{}, reg, slog.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingAPIKey)
}

func TestNewClassifierRejectsUnknownProvider(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)

	_, err = NewClassifier(Config{Provider: "carrier-pigeon", APIKey: "k"}, reg, slog.Default())
	require.Error(t, err)
}
