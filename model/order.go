/*
Copyright 2025 PayGrab Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// WalletA and WalletB are the payment methods an order can declare.
	// A payee can only receive an order if it holds an active receiving
	// code tagged with the same method.
	WalletA = "wallet_a"
	WalletB = "wallet_b"
)

// Order is a single payment submission awaiting assignment to a payee.
// OrderID doubles as the idempotency key for persistence: upserting the
// same order twice never creates a second row.
type Order struct {
	ID            int64           `json:"-"`
	OrderID       string          `json:"order_id"`
	ShareID       string          `json:"share_id"`
	CustomerID    string          `json:"customer_id"`
	LoanID        string          `json:"loan_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Remark        string          `json:"remark,omitempty"`
	Periods       int             `json:"periods"`
	PayeeID       string          `json:"payee_id,omitempty"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
}

func (o *Order) ToJSON() ([]byte, error) {
	return json.Marshal(o)
}

// Repayment is the durable record created when an order is settled.
// Exactly one repayment exists per completed order.
type Repayment struct {
	ID          int64           `json:"-"`
	RepaymentID string          `json:"repayment_id"`
	OrderID     string          `json:"order_id"`
	PayeeID     string          `json:"payee_id"`
	CustomerID  string          `json:"customer_id"`
	LoanID      string          `json:"loan_id"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ScheduleRow is one repayment-schedule installment grouped under a share
// link. Settlement marks the outstanding rows of the order's share as paid
// with their prorated portion of the settled amount.
type ScheduleRow struct {
	ID         int64           `json:"-"`
	RowID      string          `json:"row_id"`
	ShareID    string          `json:"share_id"`
	LoanID     string          `json:"loan_id"`
	Period     int             `json:"period"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Paid       bool            `json:"paid"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
}

// ValidPaymentMethod reports whether method is one of the supported
// wallet methods.
func ValidPaymentMethod(method string) bool {
	return method == WalletA || method == WalletB
}
