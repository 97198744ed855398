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
	"time"

	"github.com/sirupsen/logrus"

	"github.com/segunla/paygrab/model"
)

// BroadcastOrder schedules one delayed, fire-and-forget push per ranked
// candidate. Each timer is independent: a candidate with no live
// connection at fire time is silently skipped and the others are
// unaffected. Timers are never cancelled once an order is claimed; a
// late push to a losing payee is harmless because the grab will fail
// with order-not-found.
func (l *PayGrab) BroadcastOrder(ord *model.Order, candidates []model.Candidate) {
	if len(candidates) == 0 {
		logrus.Infof("no eligible payees for order %s, skipping broadcast", ord.OrderID)
		return
	}

	note := model.OrderNotification{
		OrderID:       ord.OrderID,
		CustomerID:    ord.CustomerID,
		Amount:        ord.Amount.String(),
		PaymentMethod: ord.PaymentMethod,
		Remark:        ord.Remark,
		Periods:       ord.Periods,
		CreatedAt:     ord.CreatedAt,
		ExpiresAt:     ord.ExpiresAt,
	}

	for _, candidate := range candidates {
		payeeID := candidate.Payee.PayeeID
		time.AfterFunc(candidate.Delay, func() {
			l.registry.Push(RolePayee, payeeID, model.PushEvent{
				Event: model.EventNewOrder,
				Data:  note,
			})
		})
	}
	logrus.Infof("scheduled broadcast of order %s to %d payees", ord.OrderID, len(candidates))
}
