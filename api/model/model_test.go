package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/segunla/paygrab/model"
)

func TestValidateSubmitOrder(t *testing.T) {
	valid := SubmitOrder{
		CustomerID:    "cust_1",
		Amount:        decimal.NewFromInt(500),
		PaymentMethod: model.WalletA,
		Periods:       3,
	}
	assert.NoError(t, valid.ValidateSubmitOrder())

	missingCustomer := valid
	missingCustomer.CustomerID = ""
	assert.Error(t, missingCustomer.ValidateSubmitOrder())

	negativeAmount := valid
	negativeAmount.Amount = decimal.NewFromInt(-5)
	assert.Error(t, negativeAmount.ValidateSubmitOrder())

	badMethod := valid
	badMethod.PaymentMethod = "cash"
	assert.Error(t, badMethod.ValidateSubmitOrder())
}

func TestValidateGrabOrder(t *testing.T) {
	assert.Error(t, (&GrabOrder{}).ValidateGrabOrder())
	assert.NoError(t, (&GrabOrder{PayeeID: "pye_1"}).ValidateGrabOrder())
}

func TestValidateSettleOrder(t *testing.T) {
	assert.NoError(t, (&SettleOrder{Status: "completed"}).ValidateSettleOrder())
	assert.Error(t, (&SettleOrder{Status: "cancelled"}).ValidateSettleOrder())
	assert.Error(t, (&SettleOrder{}).ValidateSettleOrder())
}

func TestValidateCreatePayee(t *testing.T) {
	valid := CreatePayee{Name: "Corner Shop", DailyLimit: decimal.NewFromInt(10000)}
	assert.NoError(t, valid.ValidateCreatePayee())

	assert.Error(t, (&CreatePayee{DailyLimit: decimal.NewFromInt(10)}).ValidateCreatePayee())
	assert.Error(t, (&CreatePayee{Name: "No Limit"}).ValidateCreatePayee())
}

func TestValidateCreateReceivingCode(t *testing.T) {
	assert.NoError(t, (&CreateReceivingCode{PaymentMethod: model.WalletB}).ValidateCreateReceivingCode())
	assert.Error(t, (&CreateReceivingCode{PaymentMethod: "cash"}).ValidateCreateReceivingCode())
}

func TestSubmitOrderToOrder(t *testing.T) {
	dto := SubmitOrder{
		OrderID:       "ord_1",
		ShareID:       "shr_1",
		CustomerID:    "cust_1",
		LoanID:        "loan_1",
		Amount:        decimal.NewFromInt(500),
		PaymentMethod: model.WalletA,
		Remark:        "note",
		Periods:       3,
	}
	ord := dto.ToOrder()
	assert.Equal(t, "ord_1", ord.OrderID)
	assert.Equal(t, "shr_1", ord.ShareID)
	assert.True(t, ord.Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 3, ord.Periods)
}
