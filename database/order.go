package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segunla/paygrab/internal/apierror"
	"github.com/segunla/paygrab/model"

	_ "github.com/lib/pq"
)

// UpsertOrder persists an order keyed by order_id. Re-submitting the
// same identifier refreshes the mutable fields but never creates a
// second row or touches an assignment already made. The returned order
// is the authoritative row after the upsert: a retry of an order that
// has already been grabbed comes back with its real status and payee,
// not the caller's pending draft.
func (d Datasource) UpsertOrder(ctx context.Context, ord *model.Order) (*model.Order, error) {
	row := d.Conn.QueryRowContext(ctx,
		`INSERT INTO orders(order_id, share_id, customer_id, loan_id, amount, payment_method, remark, periods, status, created_at, expires_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 ON CONFLICT (order_id) DO UPDATE SET remark = EXCLUDED.remark, expires_at = EXCLUDED.expires_at
		 RETURNING order_id, share_id, customer_id, loan_id, amount, payment_method, remark, periods, payee_id, status, created_at, expires_at`,
		ord.OrderID, ord.ShareID, ord.CustomerID, ord.LoanID, ord.Amount, ord.PaymentMethod, ord.Remark, ord.Periods, ord.Status, ord.CreatedAt, ord.ExpiresAt,
	)

	stored, err := scanOrderRow(row)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record order", err)
	}
	return stored, nil
}

func (d Datasource) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT order_id, share_id, customer_id, loan_id, amount, payment_method, remark, periods, payee_id, status, created_at, expires_at
		FROM orders
		WHERE order_id = $1
	`, id)

	ord, err := scanOrderRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Order with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve order", err)
	}
	return ord, nil
}

// UpdateOrderStatus closes out a still-pending order. The status guard
// mirrors AssignOrder: once an order has been grabbed or completed the
// flip changes nothing and reports not-found, so a late expiry retry
// can never clobber an assignment.
func (d Datasource) UpdateOrderStatus(ctx context.Context, id string, status string) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE orders
		SET status = $2
		WHERE order_id = $1
		AND status = 'pending'
	`, id, status)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update order status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Order with ID '%s' not found or no longer pending", id), nil)
	}
	return nil
}

// AssignOrder sets the winning payee and flips the order to grabbed. The
// WHERE clause makes the call idempotent: a retry by the same winner is a
// no-op success, while any other payee or any non-pending state changes
// nothing and reports a conflict.
func (d Datasource) AssignOrder(ctx context.Context, orderID, payeeID string) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE orders
		SET payee_id = $2, status = 'grabbed'
		WHERE order_id = $1
		AND (status = 'pending' OR (status = 'grabbed' AND payee_id = $2))
	`, orderID, payeeID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to assign order", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Order with ID '%s' is not assignable to payee '%s'", orderID, payeeID), nil)
	}
	return nil
}

// GetOrdersForDay lists one day's orders. An empty payeeID is the admin
// scope and returns everything; a payee sees its own claimed orders plus
// the still-claimable pending ones.
func (d Datasource) GetOrdersForDay(ctx context.Context, dayStart, dayEnd time.Time, payeeID string) ([]model.Order, error) {
	var rows *sql.Rows
	var err error
	if payeeID == "" {
		rows, err = d.Conn.QueryContext(ctx, `
			SELECT order_id, share_id, customer_id, loan_id, amount, payment_method, remark, periods, payee_id, status, created_at, expires_at
			FROM orders
			WHERE created_at >= $1 AND created_at < $2
			ORDER BY created_at DESC
		`, dayStart, dayEnd)
	} else {
		rows, err = d.Conn.QueryContext(ctx, `
			SELECT order_id, share_id, customer_id, loan_id, amount, payment_method, remark, periods, payee_id, status, created_at, expires_at
			FROM orders
			WHERE created_at >= $1 AND created_at < $2
			AND (status = 'pending' OR payee_id = $3)
			ORDER BY created_at DESC
		`, dayStart, dayEnd, payeeID)
	}
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve orders", err)
	}
	defer rows.Close()

	return scanOrderRows(rows)
}

// GetPendingOrders returns pending orders whose expiry window is still
// open; used to rebuild the claimable set on startup.
func (d Datasource) GetPendingOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT order_id, share_id, customer_id, loan_id, amount, payment_method, remark, periods, payee_id, status, created_at, expires_at
		FROM orders
		WHERE status = 'pending' AND expires_at > NOW()
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve pending orders", err)
	}
	defer rows.Close()

	return scanOrderRows(rows)
}

// SumReceivedForDay aggregates the payee's non-failed orders created
// within [dayStart, dayEnd). Grabbed orders count against the quota even
// before settlement so that two in-flight grabs cannot jointly exceed
// the daily limit. The window is on creation time; the short order TTL
// keeps any create/grab midnight skew within one expiry window.
func (d Datasource) SumReceivedForDay(ctx context.Context, payeeID string, dayStart, dayEnd time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := d.Conn.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM orders
		WHERE payee_id = $1
		AND status IN ('grabbed', 'completed')
		AND created_at >= $2 AND created_at < $3
	`, payeeID, dayStart, dayEnd).Scan(&total)
	if err != nil {
		return decimal.Zero, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to sum received amounts", err)
	}
	return total, nil
}

func (d Datasource) HasSettledForCustomer(ctx context.Context, payeeID, customerID string) (bool, error) {
	var exists bool
	err := d.Conn.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM repayments
			WHERE payee_id = $1 AND customer_id = $2
		)
	`, payeeID, customerID).Scan(&exists)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check settlement history", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrderRow(row rowScanner) (*model.Order, error) {
	ord := &model.Order{}
	var payeeID sql.NullString
	var shareID, loanID, remark sql.NullString
	err := row.Scan(&ord.OrderID, &shareID, &ord.CustomerID, &loanID, &ord.Amount, &ord.PaymentMethod, &remark, &ord.Periods, &payeeID, &ord.Status, &ord.CreatedAt, &ord.ExpiresAt)
	if err != nil {
		return nil, err
	}
	ord.ShareID = shareID.String
	ord.LoanID = loanID.String
	ord.Remark = remark.String
	ord.PayeeID = payeeID.String
	return ord, nil
}

func scanOrderRows(rows *sql.Rows) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		ord, err := scanOrderRow(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan order", err)
		}
		orders = append(orders, *ord)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating orders", err)
	}
	return orders, nil
}
