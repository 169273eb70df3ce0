// Package ledger fetches the transaction collection and derives aggregate
// and filtered views over it.
package ledger

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/trackwise/trackwise-go/internal/logger"
	"github.com/trackwise/trackwise-go/internal/models"
)

// Fetcher retrieves the full transaction collection.
type Fetcher interface {
	GetTransactions(ctx context.Context) ([]models.Transaction, error)
}

// Status is the view's position in a refresh cycle.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

// Filter restricts the visible set by entry type.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterIncome  Filter = models.TypeIncome
	FilterExpense Filter = models.TypeExpense
)

// Totals are the aggregates derived from the full collection. They ignore
// the active filter and search; only the table view is filtered.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// View owns the last successfully fetched collection and derives all
// displayed numbers from it. Each refresh replaces the collection wholesale;
// there is no merging of individually submitted entries and no identity
// based reconciliation. A View is not safe for concurrent use.
type View struct {
	fetcher Fetcher

	status       Status
	transactions []models.Transaction
	fetchErr     error

	filter Filter
	search string
}

// NewView creates an idle view with no filter applied.
func NewView(fetcher Fetcher) *View {
	return &View{fetcher: fetcher, filter: FilterAll}
}

// Refresh fetches the full collection, replacing the prior view in full on
// success. On failure the previously fetched collection is kept, so
// aggregates from the last successful fetch stay available; before any
// successful fetch the collection is empty and all aggregates are zero.
func (v *View) Refresh(ctx context.Context) error {
	v.status = StatusLoading
	v.fetchErr = nil

	transactions, err := v.fetcher.GetTransactions(ctx)
	if err != nil {
		v.status = StatusFailed
		v.fetchErr = err
		logger.Log.Error().Err(err).Msg("Transaction fetch failed")
		return err
	}

	v.transactions = transactions
	v.status = StatusLoaded
	return nil
}

// Status returns the view's refresh status.
func (v *View) Status() Status {
	return v.status
}

// Err returns the error from the last failed refresh, nil otherwise.
func (v *View) Err() error {
	return v.fetchErr
}

// Transactions returns the full fetched collection in fetch order.
func (v *View) Transactions() []models.Transaction {
	return v.transactions
}

// SetFilter sets the type filter for the visible set.
func (v *View) SetFilter(filter Filter) {
	v.filter = filter
}

// SetSearch sets the vendor search term for the visible set.
func (v *View) SetSearch(term string) {
	v.search = term
}

// Totals computes income, expense and net over the entire collection,
// unaffected by the active filter and search.
func (v *View) Totals() Totals {
	totals := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range v.transactions {
		switch tx.Type {
		case models.TypeIncome:
			totals.Income = totals.Income.Add(tx.Amount)
		case models.TypeExpense:
			totals.Expense = totals.Expense.Add(tx.Amount)
		}
	}
	totals.Net = totals.Income.Sub(totals.Expense)
	return totals
}

// Visible returns the subset passing both the type filter and the vendor
// search, preserving fetch order. The search is a case-insensitive substring
// match; a transaction with no vendor never matches a non-empty term.
func (v *View) Visible() []models.Transaction {
	term := strings.ToLower(v.search)

	var visible []models.Transaction
	for _, tx := range v.transactions {
		if v.filter != FilterAll && tx.Type != string(v.filter) {
			continue
		}
		if term != "" {
			if tx.Vendor == "" || !strings.Contains(strings.ToLower(tx.Vendor), term) {
				continue
			}
		}
		visible = append(visible, tx)
	}
	return visible
}
