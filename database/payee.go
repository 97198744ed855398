package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/segunla/paygrab/internal/apierror"
	"github.com/segunla/paygrab/model"
)

const payeePoolCacheTTL = 30 * time.Second

func payeePoolCacheKey(method string) string {
	return fmt.Sprintf("payees:method:%s", method)
}

func (d Datasource) CreatePayee(ctx context.Context, p model.Payee) (model.Payee, error) {
	p.PayeeID = GenerateUUIDWithSuffix("pye")
	p.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO payees (payee_id, name, address, daily_limit, created_at) VALUES ($1, $2, $3, $4, $5)`,
		p.PayeeID, p.Name, p.Address, p.DailyLimit, p.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.Payee{}, apierror.NewAPIError(apierror.ErrConflict, "Payee already exists", err)
		}
		return model.Payee{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create payee", err)
	}

	d.invalidatePayeePool(ctx)
	return p, nil
}

func (d Datasource) GetPayeeByID(ctx context.Context, id string) (*model.Payee, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT payee_id, name, address, daily_limit, created_at
		FROM payees
		WHERE payee_id = $1
	`, id)

	p := &model.Payee{}
	var address sql.NullString
	err := row.Scan(&p.PayeeID, &p.Name, &address, &p.DailyLimit, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Payee with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payee", err)
	}
	p.Address = address.String

	codes, err := d.getReceivingCodes(ctx, p.PayeeID)
	if err != nil {
		return nil, err
	}
	p.ReceivingCodes = codes
	return p, nil
}

func (d Datasource) GetAllPayees(ctx context.Context) ([]model.Payee, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT payee_id, name, address, daily_limit, created_at
		FROM payees
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payees", err)
	}
	defer rows.Close()

	payees, err := scanPayeeRows(rows)
	if err != nil {
		return nil, err
	}
	for i := range payees {
		codes, err := d.getReceivingCodes(ctx, payees[i].PayeeID)
		if err != nil {
			return nil, err
		}
		payees[i].ReceivingCodes = codes
	}
	return payees, nil
}

// GetPayeesByMethod loads the payees the ranker considers for an order:
// those holding at least one active receiving code for the payment
// method. The pool changes slowly, so results sit in a short-TTL cache;
// quota math never reads from here.
func (d Datasource) GetPayeesByMethod(ctx context.Context, method string) ([]model.Payee, error) {
	if d.Cache != nil {
		var cached []model.Payee
		if hit, err := d.Cache.Get(ctx, payeePoolCacheKey(method), &cached); err == nil && hit {
			return cached, nil
		}
	}

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT DISTINCT p.payee_id, p.name, p.address, p.daily_limit, p.created_at
		FROM payees p
		JOIN receiving_codes c ON c.payee_id = p.payee_id
		WHERE c.active = TRUE AND c.payment_method = $1
		ORDER BY p.created_at ASC
	`, method)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payees by method", err)
	}
	defer rows.Close()

	payees, err := scanPayeeRows(rows)
	if err != nil {
		return nil, err
	}
	for i := range payees {
		codes, err := d.getReceivingCodes(ctx, payees[i].PayeeID)
		if err != nil {
			return nil, err
		}
		payees[i].ReceivingCodes = codes
	}

	if d.Cache != nil {
		if err := d.Cache.Set(ctx, payeePoolCacheKey(method), payees, payeePoolCacheTTL); err != nil {
			// cache failure never blocks ranking
			_ = err
		}
	}
	return payees, nil
}

func (d Datasource) AddReceivingCode(ctx context.Context, code model.ReceivingCode) (model.ReceivingCode, error) {
	code.CodeID = GenerateUUIDWithSuffix("rcv")
	code.Active = true
	code.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO receiving_codes (code_id, payee_id, payment_method, label, active, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		code.CodeID, code.PayeeID, code.PaymentMethod, code.Label, code.Active, code.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return model.ReceivingCode{}, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Payee with ID '%s' not found", code.PayeeID), err)
		}
		return model.ReceivingCode{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to add receiving code", err)
	}

	d.invalidatePayeePool(ctx)
	return code, nil
}

func (d Datasource) DeactivateReceivingCode(ctx context.Context, codeID string) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE receiving_codes
		SET active = FALSE
		WHERE code_id = $1
	`, codeID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to deactivate receiving code", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Receiving code with ID '%s' not found", codeID), nil)
	}

	d.invalidatePayeePool(ctx)
	return nil
}

func (d Datasource) UpdatePayeeDailyLimit(ctx context.Context, payeeID string, limit decimal.Decimal) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE payees
		SET daily_limit = $2
		WHERE payee_id = $1
	`, payeeID, limit)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update daily limit", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Payee with ID '%s' not found", payeeID), nil)
	}

	d.invalidatePayeePool(ctx)
	return nil
}

func (d Datasource) getReceivingCodes(ctx context.Context, payeeID string) ([]model.ReceivingCode, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT code_id, payee_id, payment_method, label, active, created_at
		FROM receiving_codes
		WHERE payee_id = $1
		ORDER BY created_at ASC
	`, payeeID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve receiving codes", err)
	}
	defer rows.Close()

	var codes []model.ReceivingCode
	for rows.Next() {
		var code model.ReceivingCode
		var label sql.NullString
		if err := rows.Scan(&code.CodeID, &code.PayeeID, &code.PaymentMethod, &label, &code.Active, &code.CreatedAt); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan receiving code", err)
		}
		code.Label = label.String
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating receiving codes", err)
	}
	return codes, nil
}

func (d Datasource) invalidatePayeePool(ctx context.Context) {
	if d.Cache == nil {
		return
	}
	for _, method := range []string{model.WalletA, model.WalletB} {
		_ = d.Cache.Delete(ctx, payeePoolCacheKey(method))
	}
}

func scanPayeeRows(rows *sql.Rows) ([]model.Payee, error) {
	var payees []model.Payee
	for rows.Next() {
		var p model.Payee
		var address sql.NullString
		if err := rows.Scan(&p.PayeeID, &p.Name, &address, &p.DailyLimit, &p.CreatedAt); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan payee", err)
		}
		p.Address = address.String
		payees = append(payees, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating payees", err)
	}
	return payees, nil
}
