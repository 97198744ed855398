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

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/segunla/paygrab/internal/apierror"
	"github.com/segunla/paygrab/model"
)

const settlementMaxRetries = 3

// SettleOrder completes a grabbed order. The datasource applies the
// status flip, the repayment record, and the schedule proration as one
// transaction; here transient storage failures are retried as a whole,
// never partially. Business rejections (unknown order, wrong state) are
// not retried.
func (l *PayGrab) SettleOrder(ctx context.Context, orderID string) (*model.Order, error) {
	var settled *model.Order
	operation := func() error {
		ord, err := l.datasource.SettleOrder(ctx, orderID)
		if err != nil {
			if apiErr, ok := err.(apierror.APIError); ok && apiErr.Code != apierror.ErrInternalServer {
				return backoff.Permanent(err)
			}
			logrus.Errorf("settlement attempt failed for order %s: %v", orderID, err)
			return err
		}
		settled = ord
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), settlementMaxRetries), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}

	// settlement is terminal; normally the grab already removed it
	l.claimable.Remove(orderID)

	if err := SendWebhook(NewWebhook{Event: getEventFromStatus(settled.Status), Payload: settled}); err != nil {
		logrus.Errorf("webhook dispatch failed for order %s: %v", orderID, err)
	}
	return settled, nil
}

// GetRepayment returns the repayment record created for a completed
// order.
func (l *PayGrab) GetRepayment(ctx context.Context, orderID string) (*model.Repayment, error) {
	return l.datasource.GetRepaymentByOrderID(ctx, orderID)
}

// GetScheduleRows returns the repayment-schedule rows grouped under a
// share link, paid and outstanding alike.
func (l *PayGrab) GetScheduleRows(ctx context.Context, shareID string) ([]model.ScheduleRow, error) {
	return l.datasource.GetScheduleRowsByShare(ctx, shareID)
}
