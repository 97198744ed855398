package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segunla/paygrab/internal/apierror"
	"github.com/segunla/paygrab/model"
)

// SettleOrder completes a grabbed order in one transaction: the status
// flip, the repayment record, and the prorated schedule updates commit
// together or not at all. Calling it again for an already completed
// order returns the existing state without creating a second repayment.
//
// Proration rule: the settled amount is split equally across the share's
// outstanding schedule rows, each portion truncated to 2 decimal places;
// the last row absorbs the truncation remainder so the distributed sum
// equals the settled amount exactly.
func (d Datasource) SettleOrder(ctx context.Context, orderID string) (*model.Order, error) {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin settlement transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `
		SELECT order_id, share_id, customer_id, loan_id, amount, payment_method, remark, periods, payee_id, status, created_at, expires_at
		FROM orders
		WHERE order_id = $1
		FOR UPDATE
	`, orderID)

	ord, err := scanOrderRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Order with ID '%s' not found", orderID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to load order for settlement", err)
	}

	if ord.Status == "completed" {
		return ord, nil
	}
	if ord.Status != "grabbed" || ord.PayeeID == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("Order with ID '%s' must be grabbed before settlement", orderID), nil)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO repayments (repayment_id, order_id, payee_id, customer_id, loan_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_id) DO NOTHING
	`, GenerateUUIDWithSuffix("rpy"), ord.OrderID, ord.PayeeID, ord.CustomerID, ord.LoanID, ord.Amount, time.Now())
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record repayment", err)
	}

	if ord.ShareID != "" {
		if err := d.distributeToSchedule(ctx, tx, ord); err != nil {
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET status = 'completed'
		WHERE order_id = $1
	`, ord.OrderID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to complete order", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit settlement", err)
	}

	ord.Status = "completed"
	return ord, nil
}

func (d Datasource) distributeToSchedule(ctx context.Context, tx *sql.Tx, ord *model.Order) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT row_id
		FROM repayment_schedules
		WHERE share_id = $1 AND paid = FALSE
		ORDER BY period ASC
		FOR UPDATE
	`, ord.ShareID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to load schedule rows", err)
	}

	var rowIDs []string
	for rows.Next() {
		var rowID string
		if err := rows.Scan(&rowID); err != nil {
			rows.Close()
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan schedule row", err)
		}
		rowIDs = append(rowIDs, rowID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating schedule rows", err)
	}
	rows.Close()

	if len(rowIDs) == 0 {
		return nil
	}

	count := decimal.NewFromInt(int64(len(rowIDs)))
	portion := ord.Amount.Div(count).RoundDown(2)
	// The last row gets whatever truncation left over.
	last := ord.Amount.Sub(portion.Mul(decimal.NewFromInt(int64(len(rowIDs) - 1))))

	now := time.Now()
	for i, rowID := range rowIDs {
		share := portion
		if i == len(rowIDs)-1 {
			share = last
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE repayment_schedules
			SET amount_paid = amount_paid + $2, paid = TRUE, paid_at = $3
			WHERE row_id = $1
		`, rowID, share, now)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update schedule row", err)
		}
	}
	return nil
}

func (d Datasource) GetRepaymentByOrderID(ctx context.Context, orderID string) (*model.Repayment, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT repayment_id, order_id, payee_id, customer_id, loan_id, amount, created_at
		FROM repayments
		WHERE order_id = $1
	`, orderID)

	rpy := &model.Repayment{}
	var loanID sql.NullString
	err := row.Scan(&rpy.RepaymentID, &rpy.OrderID, &rpy.PayeeID, &rpy.CustomerID, &loanID, &rpy.Amount, &rpy.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Repayment for order '%s' not found", orderID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve repayment", err)
	}
	rpy.LoanID = loanID.String
	return rpy, nil
}

func (d Datasource) GetScheduleRowsByShare(ctx context.Context, shareID string) ([]model.ScheduleRow, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT row_id, share_id, loan_id, period, amount_due, amount_paid, paid, paid_at
		FROM repayment_schedules
		WHERE share_id = $1
		ORDER BY period ASC
	`, shareID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve schedule rows", err)
	}
	defer rows.Close()

	var result []model.ScheduleRow
	for rows.Next() {
		var sr model.ScheduleRow
		var loanID sql.NullString
		var paidAt sql.NullTime
		if err := rows.Scan(&sr.RowID, &sr.ShareID, &loanID, &sr.Period, &sr.AmountDue, &sr.AmountPaid, &sr.Paid, &paidAt); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan schedule row", err)
		}
		sr.LoanID = loanID.String
		if paidAt.Valid {
			t := paidAt.Time
			sr.PaidAt = &t
		}
		result = append(result, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating schedule rows", err)
	}
	return result, nil
}
