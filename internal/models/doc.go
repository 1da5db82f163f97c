// Package models defines the core domain entities for the group-expense
// ledger:
//   - Bill: a named financial grouping of expenses scoped to one event
//   - Expense: a single expenditure with a payer and a cost-sharing group
//   - Settlement: a user-asserted payment record awaiting confirmation
//   - BillParticipant: membership of a user in a bill
//
// Users and events are external collaborators: the models carry only
// their opaque string identifiers. Money amounts are shopspring decimals
// with two fraction digits at the edges; intermediate arithmetic keeps
// full precision (see the ledger package).
package models
