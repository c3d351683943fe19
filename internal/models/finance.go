package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction and category kinds
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

type Category struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Kind      string
	CreatedAt time.Time
}

type Transaction struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CategoryID *uuid.UUID // nil if category deleted or never set
	Amount     decimal.Decimal
	Kind       string
	Note       string
	OccurredAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type SavingsGoal struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	TargetAmount decimal.Decimal
	SavedAmount  decimal.Decimal
	Deadline     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SavingsTool struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	Kind       string // deposit, broker, cash and alike
	AnnualRate *decimal.Decimal
	Notes      string
	CreatedAt  time.Time
}
