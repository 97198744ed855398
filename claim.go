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
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/segunla/paygrab/internal/apierror"
	redlock "github.com/segunla/paygrab/internal/lock"
	"github.com/segunla/paygrab/model"
)

// ClaimableSet holds the orders currently open for grabbing. Remove is
// the single-winner primitive: the membership check and the removal
// happen under one mutex, so concurrent grab requests for the same order
// resolve to exactly one winner.
type ClaimableSet struct {
	mu     sync.Mutex
	orders map[string]*model.Order
}

func NewClaimableSet() *ClaimableSet {
	return &ClaimableSet{
		orders: make(map[string]*model.Order),
	}
}

func (s *ClaimableSet) Add(ord *model.Order) {
	s.mu.Lock()
	s.orders[ord.OrderID] = ord
	s.mu.Unlock()
}

func (s *ClaimableSet) Get(orderID string) (*model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ord, ok := s.orders[orderID]
	return ord, ok
}

// Remove atomically takes the order out of the set. The second return
// value reports whether this caller was the one that removed it.
func (s *ClaimableSet) Remove(orderID string) (*model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ord, ok := s.orders[orderID]
	if !ok {
		return nil, false
	}
	delete(s.orders, orderID)
	return ord, true
}

func (s *ClaimableSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// GrabOrder is the claim arbiter. It validates the payee, recomputes the
// payee's remaining daily quota, and then atomically removes the order
// from the claimable set before persisting the assignment. Losing payees
// get a clean failure; the winning payee's identity is pushed to the
// submitting customer.
//
// The quota check here is advisory: the per-payee redis lock narrows the
// check-then-assign window across processes, and final correctness is
// enforced by the idempotent assignment and the settlement transaction.
func (l *PayGrab) GrabOrder(ctx context.Context, payeeID, orderID string) (*model.Order, error) {
	if payeeID == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "missing payee identity", nil)
	}

	if _, ok := l.claimable.Get(orderID); !ok {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "order not found or expired", nil)
	}

	payee, err := l.datasource.GetPayeeByID(ctx, payeeID)
	if err != nil {
		return nil, err
	}

	locker := redlock.NewLocker(l.redis, "quota:"+payeeID, model.GenerateUUIDWithSuffix("loc"))
	if err := locker.Lock(ctx, 30*time.Second); err != nil {
		logrus.Debugf("quota lock unavailable for payee %s: %v", payeeID, err)
	} else {
		defer func() {
			if err := locker.Unlock(ctx); err != nil {
				logrus.Debugf("quota unlock failed for payee %s: %v", payeeID, err)
			}
		}()
	}

	ord, ok := l.claimable.Get(orderID)
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "order not found or expired", nil)
	}

	remaining, err := l.remainingQuota(ctx, payee, time.Now())
	if err != nil {
		return nil, err
	}
	if remaining.LessThan(ord.Amount) {
		return nil, apierror.NewAPIError(apierror.ErrQuotaExceeded, "insufficient daily quota", nil)
	}

	won, ok := l.claimable.Remove(orderID)
	if !ok {
		// another payee won between the quota check and here
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "order not found or expired", nil)
	}

	if err := l.datasource.AssignOrder(ctx, orderID, payeeID); err != nil {
		// the order was never assigned, so put it back for others
		l.claimable.Add(won)
		return nil, err
	}

	won.PayeeID = payeeID
	won.Status = StatusGrabbed

	l.registry.Push(RoleCustomer, won.CustomerID, model.PushEvent{
		Event: model.EventOrderGrabbed,
		Data: model.GrabNotification{
			OrderID:   won.OrderID,
			PayeeID:   payee.PayeeID,
			PayeeName: payee.Name,
		},
	})

	if err := SendWebhook(NewWebhook{Event: getEventFromStatus(won.Status), Payload: won}); err != nil {
		logrus.Errorf("webhook dispatch failed for order %s: %v", won.OrderID, err)
	}

	return won, nil
}
