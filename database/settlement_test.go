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

func TestSettleOrder_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT order_id, share_id, customer_id").
		WithArgs("ord_1").
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow("ord_1", "shr_1", "cust_1", "loan_1", "300", model.WalletA, nil, 3, "pye_1", "grabbed", now, now))
	mock.ExpectExec("INSERT INTO repayments").
		WithArgs(sqlmock.AnyArg(), "ord_1", "pye_1", "cust_1", "loan_1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT row_id").
		WithArgs("shr_1").
		WillReturnRows(sqlmock.NewRows([]string{"row_id"}).
			AddRow("row_1").
			AddRow("row_2").
			AddRow("row_3"))
	mock.ExpectExec("UPDATE repayment_schedules").
		WithArgs("row_1", decimal.NewFromInt(100), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE repayment_schedules").
		WithArgs("row_2", decimal.NewFromInt(100), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE repayment_schedules").
		WithArgs("row_3", decimal.NewFromInt(100), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders").
		WithArgs("ord_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ord, err := ds.SettleOrder(context.Background(), "ord_1")
	assert.NoError(t, err)
	assert.Equal(t, "completed", ord.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleOrder_ProrationRemainderGoesToLastRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	// 100 over 3 rows: 33.33 + 33.33 + 33.34
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT order_id, share_id, customer_id").
		WithArgs("ord_1").
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow("ord_1", "shr_1", "cust_1", "loan_1", "100", model.WalletA, nil, 3, "pye_1", "grabbed", now, now))
	mock.ExpectExec("INSERT INTO repayments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT row_id").
		WithArgs("shr_1").
		WillReturnRows(sqlmock.NewRows([]string{"row_id"}).
			AddRow("row_1").
			AddRow("row_2").
			AddRow("row_3"))
	mock.ExpectExec("UPDATE repayment_schedules").
		WithArgs("row_1", decimal.RequireFromString("33.33"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE repayment_schedules").
		WithArgs("row_2", decimal.RequireFromString("33.33"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE repayment_schedules").
		WithArgs("row_3", decimal.RequireFromString("33.34"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders").
		WithArgs("ord_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err = ds.SettleOrder(context.Background(), "ord_1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleOrder_AlreadyCompletedIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT order_id, share_id, customer_id").
		WithArgs("ord_1").
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow("ord_1", "shr_1", "cust_1", "loan_1", "300", model.WalletA, nil, 3, "pye_1", "completed", now, now))
	mock.ExpectRollback()

	ord, err := ds.SettleOrder(context.Background(), "ord_1")
	assert.NoError(t, err)
	assert.Equal(t, "completed", ord.Status)
}

func TestSettleOrder_NotGrabbed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT order_id, share_id, customer_id").
		WithArgs("ord_1").
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow("ord_1", "shr_1", "cust_1", "loan_1", "300", model.WalletA, nil, 3, nil, "pending", now, now))
	mock.ExpectRollback()

	_, err = ds.SettleOrder(context.Background(), "ord_1")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)
}

func TestSettleOrder_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT order_id, share_id, customer_id").
		WithArgs("ord_missing").
		WillReturnRows(sqlmock.NewRows(orderColumns()))
	mock.ExpectRollback()

	_, err = ds.SettleOrder(context.Background(), "ord_missing")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestSettleOrder_NoScheduleRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	// a share with nothing outstanding settles without schedule updates
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT order_id, share_id, customer_id").
		WithArgs("ord_1").
		WillReturnRows(sqlmock.NewRows(orderColumns()).
			AddRow("ord_1", "shr_1", "cust_1", "loan_1", "300", model.WalletA, nil, 3, "pye_1", "grabbed", now, now))
	mock.ExpectExec("INSERT INTO repayments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT row_id").
		WithArgs("shr_1").
		WillReturnRows(sqlmock.NewRows([]string{"row_id"}))
	mock.ExpectExec("UPDATE orders").
		WithArgs("ord_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err = ds.SettleOrder(context.Background(), "ord_1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRepaymentByOrderID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT repayment_id, order_id").
		WithArgs("ord_unsettled").
		WillReturnRows(sqlmock.NewRows([]string{"repayment_id", "order_id", "payee_id", "customer_id", "loan_id", "amount", "created_at"}))

	_, err = ds.GetRepaymentByOrderID(context.Background(), "ord_unsettled")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestGetScheduleRowsByShare(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	rows := sqlmock.NewRows([]string{"row_id", "share_id", "loan_id", "period", "amount_due", "amount_paid", "paid", "paid_at"}).
		AddRow("row_1", "shr_1", "loan_1", 1, "100", "100", true, now).
		AddRow("row_2", "shr_1", "loan_1", 2, "100", "0", false, nil)
	mock.ExpectQuery("SELECT row_id, share_id, loan_id").
		WithArgs("shr_1").
		WillReturnRows(rows)

	schedule, err := ds.GetScheduleRowsByShare(context.Background(), "shr_1")
	assert.NoError(t, err)
	assert.Len(t, schedule, 2)
	assert.True(t, schedule[0].Paid)
	assert.NotNil(t, schedule[0].PaidAt)
	assert.False(t, schedule[1].Paid)
	assert.Nil(t, schedule[1].PaidAt)
}
