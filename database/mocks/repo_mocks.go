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
package mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/segunla/paygrab/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Order methods

func (m *MockDataSource) UpsertOrder(ctx context.Context, ord *model.Order) (*model.Order, error) {
	args := m.Called(ctx, ord)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockDataSource) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockDataSource) UpdateOrderStatus(ctx context.Context, id string, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDataSource) AssignOrder(ctx context.Context, orderID, payeeID string) error {
	args := m.Called(ctx, orderID, payeeID)
	return args.Error(0)
}

func (m *MockDataSource) GetOrdersForDay(ctx context.Context, dayStart, dayEnd time.Time, payeeID string) ([]model.Order, error) {
	args := m.Called(ctx, dayStart, dayEnd, payeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockDataSource) GetPendingOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockDataSource) SumReceivedForDay(ctx context.Context, payeeID string, dayStart, dayEnd time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, payeeID, dayStart, dayEnd)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockDataSource) HasSettledForCustomer(ctx context.Context, payeeID, customerID string) (bool, error) {
	args := m.Called(ctx, payeeID, customerID)
	return args.Bool(0), args.Error(1)
}

// Payee methods

func (m *MockDataSource) CreatePayee(ctx context.Context, p model.Payee) (model.Payee, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(model.Payee), args.Error(1)
}

func (m *MockDataSource) GetPayeeByID(ctx context.Context, id string) (*model.Payee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payee), args.Error(1)
}

func (m *MockDataSource) GetAllPayees(ctx context.Context) ([]model.Payee, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payee), args.Error(1)
}

func (m *MockDataSource) GetPayeesByMethod(ctx context.Context, method string) ([]model.Payee, error) {
	args := m.Called(ctx, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payee), args.Error(1)
}

func (m *MockDataSource) AddReceivingCode(ctx context.Context, code model.ReceivingCode) (model.ReceivingCode, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(model.ReceivingCode), args.Error(1)
}

func (m *MockDataSource) DeactivateReceivingCode(ctx context.Context, codeID string) error {
	args := m.Called(ctx, codeID)
	return args.Error(0)
}

func (m *MockDataSource) UpdatePayeeDailyLimit(ctx context.Context, payeeID string, limit decimal.Decimal) error {
	args := m.Called(ctx, payeeID, limit)
	return args.Error(0)
}

// Settlement methods

func (m *MockDataSource) SettleOrder(ctx context.Context, orderID string) (*model.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockDataSource) GetRepaymentByOrderID(ctx context.Context, orderID string) (*model.Repayment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Repayment), args.Error(1)
}

func (m *MockDataSource) GetScheduleRowsByShare(ctx context.Context, shareID string) ([]model.ScheduleRow, error) {
	args := m.Called(ctx, shareID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScheduleRow), args.Error(1)
}
