package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/segunla/paygrab/internal/apierror"
	"github.com/segunla/paygrab/model"
)

func orderColumns() []string {
	return []string{"order_id", "share_id", "customer_id", "loan_id", "amount", "payment_method", "remark", "periods", "payee_id", "status", "created_at", "expires_at"}
}

func sampleOrder() *model.Order {
	now := time.Now()
	return &model.Order{
		OrderID:       "ord_1",
		ShareID:       "shr_1",
		CustomerID:    "cust_1",
		LoanID:        "loan_1",
		Amount:        decimal.NewFromInt(500),
		PaymentMethod: model.WalletA,
		Remark:        "june installment",
		Periods:       3,
		Status:        "pending",
		CreatedAt:     now,
		ExpiresAt:     now.Add(time.Minute),
	}
}

func TestUpsertOrder_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	ord := sampleOrder()

	rows := sqlmock.NewRows(orderColumns()).
		AddRow(ord.OrderID, ord.ShareID, ord.CustomerID, ord.LoanID, "500", ord.PaymentMethod, ord.Remark, ord.Periods, nil, ord.Status, ord.CreatedAt, ord.ExpiresAt)
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(ord.OrderID, ord.ShareID, ord.CustomerID, ord.LoanID, ord.Amount, ord.PaymentMethod, ord.Remark, ord.Periods, ord.Status, ord.CreatedAt, ord.ExpiresAt).
		WillReturnRows(rows)

	saved, err := ds.UpsertOrder(context.Background(), ord)
	assert.NoError(t, err)
	assert.Equal(t, "ord_1", saved.OrderID)
	assert.Equal(t, "pending", saved.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertOrder_RetryReturnsAuthoritativeRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	ord := sampleOrder()

	// the stored row was grabbed between the original submit and this retry
	rows := sqlmock.NewRows(orderColumns()).
		AddRow(ord.OrderID, ord.ShareID, ord.CustomerID, ord.LoanID, "500", ord.PaymentMethod, ord.Remark, ord.Periods, "pye_1", "grabbed", ord.CreatedAt, ord.ExpiresAt)
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(ord.OrderID, ord.ShareID, ord.CustomerID, ord.LoanID, ord.Amount, ord.PaymentMethod, ord.Remark, ord.Periods, ord.Status, ord.CreatedAt, ord.ExpiresAt).
		WillReturnRows(rows)

	saved, err := ds.UpsertOrder(context.Background(), ord)
	assert.NoError(t, err)
	assert.Equal(t, "grabbed", saved.Status)
	assert.Equal(t, "pye_1", saved.PayeeID)
}

func TestGetOrder_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT order_id, share_id, customer_id").
		WithArgs("ord_missing").
		WillReturnRows(sqlmock.NewRows(orderColumns()))

	_, err = ds.GetOrder(context.Background(), "ord_missing")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestGetOrder_NullableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	rows := sqlmock.NewRows(orderColumns()).
		AddRow("ord_1", nil, "cust_1", nil, "500", model.WalletA, nil, 0, nil, "pending", now, now.Add(time.Minute))
	mock.ExpectQuery("SELECT order_id, share_id, customer_id").
		WithArgs("ord_1").
		WillReturnRows(rows)

	ord, err := ds.GetOrder(context.Background(), "ord_1")
	assert.NoError(t, err)
	assert.Empty(t, ord.ShareID)
	assert.Empty(t, ord.PayeeID)
	assert.True(t, ord.Amount.Equal(decimal.NewFromInt(500)))
}

func TestAssignOrder_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE orders").
		WithArgs("ord_1", "pye_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = ds.AssignOrder(context.Background(), "ord_1", "pye_1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignOrder_AlreadyTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	// another payee holds the order, so the guarded update touches nothing
	mock.ExpectExec("UPDATE orders").
		WithArgs("ord_1", "pye_2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.AssignOrder(context.Background(), "ord_1", "pye_2")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)
}

func TestUpdateOrderStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE orders").
		WithArgs("ord_missing", "expired").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.UpdateOrderStatus(context.Background(), "ord_missing", "expired")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestUpdateOrderStatus_GrabbedRowUntouched(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	// the row exists but is already grabbed, so the pending guard
	// matches nothing and the assignment survives
	mock.ExpectExec("UPDATE orders").
		WithArgs("ord_1", "expired").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.UpdateOrderStatus(context.Background(), "ord_1", "expired")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrdersForDay_PayeeScope(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()
	dayStart := now.Truncate(24 * time.Hour)
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows := sqlmock.NewRows(orderColumns()).
		AddRow("ord_1", "shr_1", "cust_1", "loan_1", "500", model.WalletA, "", 3, nil, "pending", now, now.Add(time.Minute)).
		AddRow("ord_2", "shr_2", "cust_2", "loan_2", "250", model.WalletA, "", 1, "pye_1", "grabbed", now, now.Add(time.Minute))
	mock.ExpectQuery("SELECT order_id, share_id, customer_id").
		WithArgs(dayStart, dayEnd, "pye_1").
		WillReturnRows(rows)

	orders, err := ds.GetOrdersForDay(context.Background(), dayStart, dayEnd, "pye_1")
	assert.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, "pending", orders[0].Status)
	assert.Equal(t, "pye_1", orders[1].PayeeID)
}

func TestGetOrdersForDay_AdminScope(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()
	dayStart := now.Truncate(24 * time.Hour)
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows := sqlmock.NewRows(orderColumns()).
		AddRow("ord_1", nil, "cust_1", nil, "500", model.WalletA, nil, 0, nil, "expired", now, now)
	mock.ExpectQuery("SELECT order_id, share_id, customer_id").
		WithArgs(dayStart, dayEnd).
		WillReturnRows(rows)

	orders, err := ds.GetOrdersForDay(context.Background(), dayStart, dayEnd, "")
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, "expired", orders[0].Status)
}

func TestSumReceivedForDay(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()
	dayStart := now.Truncate(24 * time.Hour)
	dayEnd := dayStart.AddDate(0, 0, 1)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("pye_1", dayStart, dayEnd).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("1250.50"))

	total, err := ds.SumReceivedForDay(context.Background(), "pye_1", dayStart, dayEnd)
	assert.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("1250.50")))
}

func TestHasSettledForCustomer(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("pye_1", "cust_1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	hasHistory, err := ds.HasSettledForCustomer(context.Background(), "pye_1", "cust_1")
	assert.NoError(t, err)
	assert.True(t, hasHistory)
}

func TestGetPendingOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	rows := sqlmock.NewRows(orderColumns()).
		AddRow("ord_1", nil, "cust_1", nil, "500", model.WalletA, nil, 0, nil, "pending", now, now.Add(time.Minute))
	mock.ExpectQuery("SELECT order_id, share_id, customer_id").
		WillReturnRows(rows)

	orders, err := ds.GetPendingOrders(context.Background())
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, "ord_1", orders[0].OrderID)
}
