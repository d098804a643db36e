package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rzaw/delivery-proof/internal/core/domain"
)

// MySQLAdapter persists the delivery audit log.
//
// Schema:
//
//	CREATE TABLE delivery_log (
//	    id           CHAR(36) PRIMARY KEY,
//	    warehouse    VARCHAR(255) NOT NULL,
//	    product_name VARCHAR(255) NOT NULL,
//	    quantity     INT NOT NULL,
//	    applied_at   DATETIME NOT NULL
//	);
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) RecordDelivery(ctx context.Context, rec domain.DeliveryRecord) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO delivery_log (id, warehouse, product_name, quantity, applied_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Warehouse, rec.ProductName, rec.Quantity, rec.AppliedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery record %s: %w", rec.ID, err)
	}
	return nil
}
