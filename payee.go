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

package paygrab

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/segunla/paygrab/internal/apierror"
	"github.com/segunla/paygrab/model"
)

func (l *PayGrab) CreatePayee(ctx context.Context, payee model.Payee) (model.Payee, error) {
	if !payee.DailyLimit.IsPositive() {
		return model.Payee{}, apierror.NewAPIError(apierror.ErrInvalidInput, "daily limit must be greater than zero", nil)
	}
	return l.datasource.CreatePayee(ctx, payee)
}

func (l *PayGrab) GetPayeeByID(ctx context.Context, id string) (*model.Payee, error) {
	return l.datasource.GetPayeeByID(ctx, id)
}

func (l *PayGrab) GetAllPayees(ctx context.Context) ([]model.Payee, error) {
	return l.datasource.GetAllPayees(ctx)
}

// UpdateDailyLimit changes the payee's daily receiving cap. The new
// limit takes effect on the next quota computation; already grabbed
// orders are never clawed back.
func (l *PayGrab) UpdateDailyLimit(ctx context.Context, payeeID string, limit decimal.Decimal) error {
	if !limit.IsPositive() {
		return apierror.NewAPIError(apierror.ErrInvalidInput, "daily limit must be greater than zero", nil)
	}
	return l.datasource.UpdatePayeeDailyLimit(ctx, payeeID, limit)
}

func (l *PayGrab) AddReceivingCode(ctx context.Context, code model.ReceivingCode) (model.ReceivingCode, error) {
	if !model.ValidPaymentMethod(code.PaymentMethod) {
		return model.ReceivingCode{}, apierror.NewAPIError(apierror.ErrInvalidInput, "payment method must be wallet_a or wallet_b", nil)
	}
	return l.datasource.AddReceivingCode(ctx, code)
}

func (l *PayGrab) DeactivateReceivingCode(ctx context.Context, codeID string) error {
	return l.datasource.DeactivateReceivingCode(ctx, codeID)
}
