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
	"time"

	"github.com/sirupsen/logrus"

	"github.com/segunla/paygrab/config"
	"github.com/segunla/paygrab/internal/apierror"
	"github.com/segunla/paygrab/model"
)

const (
	StatusPending   = "pending"
	StatusGrabbed   = "grabbed"
	StatusCompleted = "completed"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// SubmitOrder accepts a customer's payment order: it persists the order
// as pending, opens it for grabbing, queues the server-side expiry, and
// schedules the ranked broadcast. The order is accepted even when
// ranking finds nobody to tell — it then just waits out its expiry
// window. order_id is the idempotency key: a retry of an order that has
// already been grabbed or settled returns the stored row as-is, without
// reopening or re-announcing it.
func (l *PayGrab) SubmitOrder(ctx context.Context, ord *model.Order, customerAddress string) (*model.Order, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	if ord.OrderID == "" {
		ord.OrderID = model.GenerateUUIDWithSuffix("ord")
	}
	ord.Status = StatusPending
	ord.PayeeID = ""
	if ord.CreatedAt.IsZero() {
		ord.CreatedAt = time.Now()
	}
	if ord.ExpiresAt.IsZero() {
		ord.ExpiresAt = ord.CreatedAt.Add(time.Duration(cfg.Dispatch.OrderTTLSec) * time.Second)
	}

	ord, err = l.datasource.UpsertOrder(ctx, ord)
	if err != nil {
		return nil, err
	}

	// an idempotent retry of an order that already advanced past pending
	// must not reopen it for grabbing
	if ord.Status != StatusPending {
		return ord, nil
	}

	l.claimable.Add(ord)

	// server-side expiry is a backstop; clients track expires_at themselves
	if err := l.queue.QueueOrderExpiry(ord.OrderID, ord.ExpiresAt); err != nil {
		logrus.Errorf("failed to queue expiry for order %s: %v", ord.OrderID, err)
	}

	if err := SendWebhook(NewWebhook{Event: getEventFromStatus(ord.Status), Payload: ord}); err != nil {
		logrus.Errorf("webhook dispatch failed for order %s: %v", ord.OrderID, err)
	}

	candidates, err := l.RankCandidates(ctx, ord, customerAddress)
	if err != nil {
		logrus.Errorf("ranking failed for order %s: %v", ord.OrderID, err)
		return ord, nil
	}
	l.BroadcastOrder(ord, candidates)

	return ord, nil
}

func (l *PayGrab) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return l.datasource.GetOrder(ctx, id)
}

// ListOrdersForDay returns the orders visible to the caller for the day
// containing at. An empty payeeID is the admin scope.
func (l *PayGrab) ListOrdersForDay(ctx context.Context, at time.Time, payeeID string) ([]model.Order, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	dayStart, dayEnd := dayBounds(at, cfg.Dispatch.Location())
	return l.datasource.GetOrdersForDay(ctx, dayStart, dayEnd, payeeID)
}

// ExpireOrder closes an order that was never grabbed. If the order has
// already left the claimable set the call is a no-op, so a late expiry
// task racing a successful grab is harmless.
func (l *PayGrab) ExpireOrder(ctx context.Context, orderID string) error {
	ord, ok := l.claimable.Remove(orderID)
	if !ok {
		return nil
	}

	if err := l.datasource.UpdateOrderStatus(ctx, orderID, StatusExpired); err != nil {
		if apiErr, ok := err.(apierror.APIError); ok && apiErr.Code == apierror.ErrNotFound {
			// the durable row already advanced past pending; drop the
			// stale claimable entry and leave the assignment alone
			return nil
		}
		// put it back so a retried expiry task still finds it
		l.claimable.Add(ord)
		return err
	}

	l.registry.Push(RoleCustomer, ord.CustomerID, model.PushEvent{
		Event: model.EventOrderExpired,
		Data:  map[string]string{"order_id": ord.OrderID},
	})

	ord.Status = StatusExpired
	if err := SendWebhook(NewWebhook{Event: getEventFromStatus(ord.Status), Payload: ord}); err != nil {
		logrus.Errorf("webhook dispatch failed for order %s: %v", ord.OrderID, err)
	}
	return nil
}

// RecoverClaimableOrders rebuilds the claimable set from still-pending,
// unexpired orders after a restart, and re-queues their expiry tasks.
// Task IDs dedupe re-enqueues of tasks that survived in redis.
func (l *PayGrab) RecoverClaimableOrders(ctx context.Context) error {
	orders, err := l.datasource.GetPendingOrders(ctx)
	if err != nil {
		return err
	}
	for i := range orders {
		ord := orders[i]
		l.claimable.Add(&ord)
		if err := l.queue.QueueOrderExpiry(ord.OrderID, ord.ExpiresAt); err != nil {
			logrus.Errorf("failed to re-queue expiry for order %s: %v", ord.OrderID, err)
		}
	}
	logrus.Infof("restored %d claimable orders", len(orders))
	return nil
}
