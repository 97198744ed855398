package database

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/segunla/paygrab/cache"

	"github.com/google/uuid"

	"github.com/segunla/paygrab/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		newCache, errCache := cache.NewCache()
		if errCache != nil {
			log.Printf("payee cache disabled: %v", errCache)
			newCache = nil
		}
		instance = &Datasource{Conn: con, Cache: newCache}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error: %v", err)
		return nil, err
	}
	err = createPayeeTable(db)
	if err != nil {
		return nil, err
	}
	err = createReceivingCodeTable(db)
	if err != nil {
		return nil, err
	}
	err = createOrderTable(db)
	if err != nil {
		return nil, err
	}
	err = createRepaymentTable(db)
	if err != nil {
		return nil, err
	}
	err = createScheduleTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr)
	return idWithSuffix
}

// createOrderTable creates a PostgreSQL table for the Order struct
func createOrderTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			order_id TEXT NOT NULL UNIQUE,
			share_id TEXT,
			customer_id TEXT NOT NULL,
			loan_id TEXT,
			amount NUMERIC(20,2) NOT NULL,
			payment_method TEXT NOT NULL,
			remark TEXT,
			periods INT NOT NULL DEFAULT 1,
			payee_id TEXT REFERENCES payees(payee_id),
			status TEXT NOT NULL CHECK (status IN ('pending', 'grabbed', 'completed', 'expired', 'cancelled')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ
		)
	`)
	if err != nil {
		log.Printf("Error creating orders table: %v", err)
	}
	return err
}

// createPayeeTable creates a PostgreSQL table for the Payee struct
func createPayeeTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS payees (
			id SERIAL PRIMARY KEY,
			payee_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			address TEXT,
			daily_limit NUMERIC(20,2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating payees table: %v", err)
	}
	return err
}

// createReceivingCodeTable creates a PostgreSQL table for the ReceivingCode struct
func createReceivingCodeTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS receiving_codes (
			id SERIAL PRIMARY KEY,
			code_id TEXT NOT NULL UNIQUE,
			payee_id TEXT NOT NULL REFERENCES payees(payee_id),
			payment_method TEXT NOT NULL,
			label TEXT,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating receiving_codes table: %v", err)
	}
	return err
}

// createRepaymentTable creates a PostgreSQL table for the Repayment struct
func createRepaymentTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS repayments (
			id SERIAL PRIMARY KEY,
			repayment_id TEXT NOT NULL UNIQUE,
			order_id TEXT NOT NULL UNIQUE REFERENCES orders(order_id),
			payee_id TEXT NOT NULL REFERENCES payees(payee_id),
			customer_id TEXT NOT NULL,
			loan_id TEXT,
			amount NUMERIC(20,2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating repayments table: %v", err)
	}
	return err
}

// createScheduleTable creates a PostgreSQL table for the ScheduleRow struct
func createScheduleTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS repayment_schedules (
			id SERIAL PRIMARY KEY,
			row_id TEXT NOT NULL UNIQUE,
			share_id TEXT NOT NULL,
			loan_id TEXT,
			period INT NOT NULL,
			amount_due NUMERIC(20,2) NOT NULL,
			amount_paid NUMERIC(20,2) NOT NULL DEFAULT 0,
			paid BOOLEAN NOT NULL DEFAULT FALSE,
			paid_at TIMESTAMPTZ
		)
	`)
	if err != nil {
		log.Printf("Error creating repayment_schedules table: %v", err)
	}
	return err
}
