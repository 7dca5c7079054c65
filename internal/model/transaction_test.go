package model

import (
	"errors"
	"testing"
	"time"
)

func TestTransaction_Validate(t *testing.T) {
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		wantErr error
		name    string
		txn     Transaction
	}{
		{
			name: "valid income",
			txn:  Transaction{Date: date, Description: "Salary", Amount: 100000, Kind: KindIncome},
		},
		{
			name: "valid expense",
			txn:  Transaction{Date: date, Description: "Food", Amount: 20000, Kind: KindExpense, CategoryID: Int64Ptr(1)},
		},
		{
			name:    "zero amount",
			txn:     Transaction{Date: date, Description: "Salary", Amount: 0, Kind: KindIncome},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			txn:     Transaction{Date: date, Description: "Refund", Amount: -5, Kind: KindIncome},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "blank description",
			txn:     Transaction{Date: date, Description: "  ", Amount: 10, Kind: KindIncome},
			wantErr: ErrEmptyDescription,
		},
		{
			name:    "missing date",
			txn:     Transaction{Description: "Salary", Amount: 10, Kind: KindIncome},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "expense without category",
			txn:     Transaction{Date: date, Description: "Food", Amount: 10, Kind: KindExpense},
			wantErr: ErrMissingCategory,
		},
		{
			name:    "income with category",
			txn:     Transaction{Date: date, Description: "Salary", Amount: 10, Kind: KindIncome, CategoryID: Int64Ptr(2)},
			wantErr: ErrUnexpectedCategory,
		},
		{
			name:    "unknown kind",
			txn:     Transaction{Date: date, Description: "Transfer", Amount: 10, Kind: "transfer"},
			wantErr: ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransaction_Signed(t *testing.T) {
	income := Transaction{Amount: 500, Kind: KindIncome}
	expense := Transaction{Amount: 500, Kind: KindExpense}
	if income.Signed() != 500 {
		t.Errorf("income Signed() = %d, want 500", income.Signed())
	}
	if expense.Signed() != -500 {
		t.Errorf("expense Signed() = %d, want -500", expense.Signed())
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(" Income "); err != nil || k != KindIncome {
		t.Errorf("ParseKind(Income) = %q, %v", k, err)
	}
	if _, err := ParseKind("gift"); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("ParseKind(gift) error = %v, want ErrInvalidKind", err)
	}
}

func TestAllocation_Validate(t *testing.T) {
	ok := Allocation{CategoryID: 1, Month: MustParseMonth("2025-06"), Amount: 0}
	if err := ok.Validate(); err != nil {
		t.Errorf("zero allocation should be valid: %v", err)
	}
	neg := Allocation{CategoryID: 1, Month: MustParseMonth("2025-06"), Amount: -1}
	if err := neg.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative allocation error = %v, want ErrInvalidAmount", err)
	}
	bad := Allocation{CategoryID: 1, Amount: 5}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("zero month error = %v, want ErrInvalidMonth", err)
	}
}

func TestNormalizeName(t *testing.T) {
	if got, err := NormalizeName("  Groceries "); err != nil || got != "Groceries" {
		t.Errorf("NormalizeName = %q, %v", got, err)
	}
	if _, err := NormalizeName(" "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("NormalizeName blank error = %v", err)
	}
}
