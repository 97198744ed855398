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

package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segunla/paygrab/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	order      // Interface for order-related operations
	payee      // Interface for payee-related operations
	settlement // Interface for settlement-related operations
}

// order defines methods for handling orders.
type order interface {
	UpsertOrder(ctx context.Context, ord *model.Order) (*model.Order, error)                                 // Creates or updates an order keyed by order_id
	GetOrder(ctx context.Context, id string) (*model.Order, error)                                           // Retrieves an order by ID
	UpdateOrderStatus(ctx context.Context, id string, status string) error                                   // Updates the status of an order
	AssignOrder(ctx context.Context, orderID, payeeID string) error                                          // Assigns an order to a payee and marks it grabbed
	GetOrdersForDay(ctx context.Context, dayStart, dayEnd time.Time, payeeID string) ([]model.Order, error)  // Retrieves orders visible to the caller for one day
	GetPendingOrders(ctx context.Context) ([]model.Order, error)                                             // Retrieves pending, unexpired orders
	SumReceivedForDay(ctx context.Context, payeeID string, dayStart, dayEnd time.Time) (decimal.Decimal, error) // Sums amounts a payee has received within a day window
	HasSettledForCustomer(ctx context.Context, payeeID, customerID string) (bool, error)                     // Checks whether a payee ever settled a repayment for a customer
}

// payee defines methods for handling payees and their receiving codes.
type payee interface {
	CreatePayee(ctx context.Context, p model.Payee) (model.Payee, error)              // Creates a new payee
	GetPayeeByID(ctx context.Context, id string) (*model.Payee, error)                // Retrieves a payee with its receiving codes
	GetAllPayees(ctx context.Context) ([]model.Payee, error)                          // Retrieves all payees
	GetPayeesByMethod(ctx context.Context, method string) ([]model.Payee, error)      // Retrieves payees holding an active code for a payment method
	AddReceivingCode(ctx context.Context, code model.ReceivingCode) (model.ReceivingCode, error) // Adds a receiving code to a payee
	DeactivateReceivingCode(ctx context.Context, codeID string) error                 // Deactivates a receiving code
	UpdatePayeeDailyLimit(ctx context.Context, payeeID string, limit decimal.Decimal) error // Updates a payee's daily receiving limit
}

// settlement defines methods for completing orders.
type settlement interface {
	SettleOrder(ctx context.Context, orderID string) (*model.Order, error)              // Atomically completes an order, records the repayment, and marks schedule rows
	GetRepaymentByOrderID(ctx context.Context, orderID string) (*model.Repayment, error) // Retrieves the repayment created for an order
	GetScheduleRowsByShare(ctx context.Context, shareID string) ([]model.ScheduleRow, error) // Retrieves schedule rows grouped under a share link
}
