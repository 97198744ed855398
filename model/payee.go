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
	"time"

	"github.com/shopspring/decimal"
)

// Payee is an account capable of receiving and confirming customer
// payments. DailyLimit caps the total amount a payee may receive in one
// calendar day; the remainder is recomputed from the order store on every
// ranking and grab decision rather than cached.
type Payee struct {
	ID             int64           `json:"-"`
	PayeeID        string          `json:"payee_id"`
	Name           string          `json:"name"`
	Address        string          `json:"address"`
	DailyLimit     decimal.Decimal `json:"daily_limit"`
	ReceivingCodes []ReceivingCode `json:"receiving_codes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ReceivingCode is a payment-method-tagged receiving credential held by a
// payee. Only active codes make the payee visible to the ranker for that
// method.
type ReceivingCode struct {
	ID            int64     `json:"-"`
	CodeID        string    `json:"code_id"`
	PayeeID       string    `json:"payee_id"`
	PaymentMethod string    `json:"payment_method"`
	Label         string    `json:"label,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// SupportsMethod reports whether the payee holds at least one active
// receiving code for the given payment method.
func (p *Payee) SupportsMethod(method string) bool {
	for _, code := range p.ReceivingCodes {
		if code.Active && code.PaymentMethod == method {
			return true
		}
	}
	return false
}

// Candidate is one entry of the ranked list produced for a single order.
// It is computed fresh per order and never persisted or reused.
type Candidate struct {
	Payee          Payee           `json:"payee"`
	Priority       int             `json:"priority"`
	Delay          time.Duration   `json:"delay"`
	RemainingQuota decimal.Decimal `json:"remaining_quota"`
}
