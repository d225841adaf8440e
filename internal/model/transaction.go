// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"time"
)

// Direction indicates which way money moved relative to the client.
type Direction string

// Transaction directions.
const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionIncoming || d == DirectionOutgoing
}

// Transaction represents a single financial transfer record from an imported
// spreadsheet row. It is immutable for the duration of its analysis.
type Transaction struct {
	ProcessedAt    time.Time
	Extra          map[string]string // all original columns, round-tripped unmodified
	ID             string
	Counterparty   string
	BankName       string
	BankIdentifier string // SWIFT/BIC, may be empty
	CountryCode    string
	CountryName    string
	City           string
	Direction      Direction
	Amount         float64 // normalized amount in KZT
	RowIndex       int
}

// GenerateHash creates a stable hash used for classification caching.
// Extra columns are folded in sorted key order so the hash does not depend
// on map iteration order.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%.2f:%s:%s:%s:%s:%s:%s",
		t.Direction,
		t.ID,
		t.Amount,
		t.Counterparty,
		t.BankName,
		t.BankIdentifier,
		t.CountryCode,
		t.CountryName,
		t.City)

	keys := make([]string, 0, len(t.Extra))
	for k := range t.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		data += ":" + k + "=" + t.Extra[k]
	}

	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
