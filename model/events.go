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

import "time"

// Push event names delivered over a subscriber's live channel.
const (
	EventConnected    = "connected"
	EventNewOrder     = "new_order"
	EventOrderGrabbed = "order_grabbed"
	EventOrderExpired = "order_expired"
)

// PushEvent is one message delivered to a live connection. Delivery is
// best effort: a subscriber without a live connection simply misses the
// push and falls back to the pull-based order listing.
type PushEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// OrderNotification is the payload broadcast to candidate payees when a
// new order becomes claimable.
type OrderNotification struct {
	OrderID       string    `json:"order_id"`
	CustomerID    string    `json:"customer_id"`
	Amount        string    `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	Remark        string    `json:"remark,omitempty"`
	Periods       int       `json:"periods"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// GrabNotification is pushed to the submitting customer once a payee has
// claimed the order.
type GrabNotification struct {
	OrderID   string `json:"order_id"`
	PayeeID   string `json:"payee_id"`
	PayeeName string `json:"payee_name,omitempty"`
}
