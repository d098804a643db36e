package domain

import (
	"strconv"
	"strings"
	"time"
)

const stockKeyPrefix = "inventory:"

// DeliveryLineItem is one product line of a confirmed delivery. It is
// transient input to the ledger and never persisted as-is.
type DeliveryLineItem struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Warehouse   string `json:"warehouse"`
}

// Valid reports whether the line item can be applied. Blank fields and
// non-positive quantities are skipped by the ledger; field values that
// contain the key delimiter would produce an ambiguous stock key, so
// they are treated the same way.
func (it DeliveryLineItem) Valid() bool {
	if it.ProductName == "" || it.Warehouse == "" || it.Quantity <= 0 {
		return false
	}
	if strings.Contains(it.ProductName, ":") || strings.Contains(it.Warehouse, ":") {
		return false
	}
	return true
}

// StockKey returns the key-value store key holding the quantity for a
// product at a warehouse: "inventory:<warehouse>:<productName>".
func (it DeliveryLineItem) StockKey() string {
	return StockKey(it.Warehouse, it.ProductName)
}

func StockKey(warehouse, productName string) string {
	return stockKeyPrefix + warehouse + ":" + productName
}

// DeliveryRecord is the audit entry written for each line item that was
// successfully applied to the ledger.
type DeliveryRecord struct {
	ID          string
	Warehouse   string
	ProductName string
	Quantity    int
	AppliedAt   time.Time
}

// FormatStock renders a stock level the way the key-value store holds
// it: a plain decimal string.
func FormatStock(level int) string {
	return strconv.Itoa(level)
}

// ParseStock parses a stored stock value.
func ParseStock(value string) (int, error) {
	return strconv.Atoi(value)
}
