// Package models defines the domain entities for the TrackWise client.
package models

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Entry types recognized by the backend.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// IncomeCategories lists the categories selectable for income entries.
var IncomeCategories = []string{"Salary", "Gift", "Freelance", "Investment", "Other"}

// ExpenseCategories lists the categories selectable for expense entries.
var ExpenseCategories = []string{"Food", "Health", "Travel", "Utilities", "Other"}

// CategoriesFor returns the category catalog for the given entry type.
func CategoriesFor(entryType string) []string {
	switch entryType {
	case TypeIncome:
		return IncomeCategories
	case TypeExpense:
		return ExpenseCategories
	default:
		return nil
	}
}

// CategoryApplies reports whether category belongs to the catalog of the
// given entry type. The empty category always applies; the backend accepts
// uncategorized entries.
func CategoryApplies(entryType, category string) bool {
	if category == "" {
		return true
	}
	return slices.Contains(CategoriesFor(entryType), category)
}

// Transaction is one recorded income or expense event. Records only ever
// come back from the backend; the client never mutates or deletes them, and
// a record has no stable identity across fetches.
type Transaction struct {
	ID          string
	Type        string
	Amount      decimal.Decimal
	Date        string // YYYY-MM-DD
	Category    string
	Description string
	Vendor      string
	Source      string // provenance tag set by the backend, opaque to the client
}

// transactionJSON mirrors the backend record shape. Amount arrives as a JSON
// number; json.Number keeps full precision until decimal parses it.
type transactionJSON struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Vendor      string      `json:"vendor"`
	Source      string      `json:"source"`
}

// UnmarshalJSON decodes a backend transaction record.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw transactionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	amount := decimal.Zero
	if raw.Amount != "" {
		parsed, err := decimal.NewFromString(raw.Amount.String())
		if err != nil {
			return fmt.Errorf("parse transaction amount %q: %w", raw.Amount, err)
		}
		amount = parsed
	}

	*t = Transaction{
		ID:          raw.ID,
		Type:        raw.Type,
		Amount:      amount,
		Date:        raw.Date,
		Category:    raw.Category,
		Description: raw.Description,
		Vendor:      raw.Vendor,
		Source:      raw.Source,
	}
	return nil
}

// DisplayVendor returns the vendor for rendering, with a dash sentinel when
// the record has none. Search matches against the raw vendor, never the
// sentinel.
func (t Transaction) DisplayVendor() string {
	if t.Vendor == "" {
		return "-"
	}
	return t.Vendor
}

// Conversation roles for chat turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message in a chat session. Turns are append-only
// and live only for the active session.
type ConversationTurn struct {
	Role string
	Text string
}
