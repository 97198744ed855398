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
	"errors"

	"github.com/shopspring/decimal"

	"github.com/segunla/paygrab/model"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type SubmitOrder struct {
	OrderID         string          `json:"order_id"`
	ShareID         string          `json:"share_id"`
	CustomerID      string          `json:"customer_id"`
	CustomerAddress string          `json:"customer_address"`
	LoanID          string          `json:"loan_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method"`
	Remark          string          `json:"remark"`
	Periods         int             `json:"periods"`
}

type GrabOrder struct {
	PayeeID string `json:"payee_id"`
}

type SettleOrder struct {
	Status string `json:"status"`
}

type CreatePayee struct {
	Name       string          `json:"name"`
	Address    string          `json:"address"`
	DailyLimit decimal.Decimal `json:"daily_limit"`
}

type CreateReceivingCode struct {
	PaymentMethod string `json:"payment_method"`
	Label         string `json:"label"`
}

type UpdateDailyLimit struct {
	DailyLimit decimal.Decimal `json:"daily_limit"`
}

func paymentMethodRule(value interface{}) error {
	method, _ := value.(string)
	if !model.ValidPaymentMethod(method) {
		return errors.New("payment_method must be wallet_a or wallet_b")
	}
	return nil
}

func positiveAmountRule(value interface{}) error {
	amount, ok := value.(decimal.Decimal)
	if !ok || !amount.IsPositive() {
		return errors.New("amount must be greater than zero")
	}
	return nil
}

func (o *SubmitOrder) ValidateSubmitOrder() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.CustomerID, validation.Required),
		validation.Field(&o.Amount, validation.By(positiveAmountRule)),
		validation.Field(&o.PaymentMethod, validation.Required, validation.By(paymentMethodRule)),
		validation.Field(&o.Periods, validation.Min(0)),
	)
}

func (g *GrabOrder) ValidateGrabOrder() error {
	return validation.ValidateStruct(g,
		validation.Field(&g.PayeeID, validation.Required),
	)
}

// ValidateSettleOrder accepts only the completed status; settlement is
// the sole status transition exposed on this route.
func (s *SettleOrder) ValidateSettleOrder() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Status, validation.Required, validation.In("completed")),
	)
}

func (p *CreatePayee) ValidateCreatePayee() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.DailyLimit, validation.By(positiveAmountRule)),
	)
}

func (r *CreateReceivingCode) ValidateCreateReceivingCode() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PaymentMethod, validation.Required, validation.By(paymentMethodRule)),
	)
}

func (u *UpdateDailyLimit) ValidateUpdateDailyLimit() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.DailyLimit, validation.By(positiveAmountRule)),
	)
}

func (o *SubmitOrder) ToOrder() *model.Order {
	return &model.Order{
		OrderID:       o.OrderID,
		ShareID:       o.ShareID,
		CustomerID:    o.CustomerID,
		LoanID:        o.LoanID,
		Amount:        o.Amount,
		PaymentMethod: o.PaymentMethod,
		Remark:        o.Remark,
		Periods:       o.Periods,
	}
}

func (p *CreatePayee) ToPayee() model.Payee {
	return model.Payee{Name: p.Name, Address: p.Address, DailyLimit: p.DailyLimit}
}

func (r *CreateReceivingCode) ToReceivingCode(payeeID string) model.ReceivingCode {
	return model.ReceivingCode{PayeeID: payeeID, PaymentMethod: r.PaymentMethod, Label: r.Label}
}
