package service

import (
	"errors"
	"fmt"
)

var (
	ErrStorageWrite = errors.New("storage write failed")
	ErrStorageRead  = errors.New("storage read failed")
)

// InsufficientStockError aborts a delivery batch when applying a line
// item would drive its stock level negative. It names the offending
// product so the caller can surface it.
type InsufficientStockError struct {
	Product string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.Product)
}
