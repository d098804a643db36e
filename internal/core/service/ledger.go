package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rzaw/delivery-proof/internal/core/domain"
	"github.com/rzaw/delivery-proof/internal/port"
)

// InventoryLedger applies delivery batches against the key-value store.
// It owns all stock-transition semantics: the store itself is a dumb
// bit-store with no transactions, and there is no locking between two
// concurrent batches touching the same key (a read-then-write lost
// update is possible; see cmd/racecheck).
type InventoryLedger struct {
	kv      port.KeyValueStore
	records chan domain.DeliveryRecord
}

func NewInventoryLedger(kv port.KeyValueStore, queueSize int) *InventoryLedger {
	return &InventoryLedger{
		kv:      kv,
		records: make(chan domain.DeliveryRecord, queueSize),
	}
}

// ApplyDeliveryBatch decrements stock for each line item in order.
// Invalid line items (blank fields, non-positive quantity, delimiter
// characters) are skipped silently. The first item that would drive a
// stock level negative aborts the batch with InsufficientStockError;
// items applied earlier in the same batch are NOT rolled back. Each
// applied item is enqueued for the delivery log.
func (l *InventoryLedger) ApplyDeliveryBatch(ctx context.Context, items []domain.DeliveryLineItem) error {
	for _, item := range items {
		if !item.Valid() {
			continue
		}

		key := item.StockKey()

		current, err := l.readStock(ctx, key)
		if err != nil {
			return err
		}

		newLevel := current - item.Quantity
		if newLevel < 0 {
			return &InsufficientStockError{Product: item.ProductName}
		}

		if err := l.kv.Put(ctx, key, domain.FormatStock(newLevel)); err != nil {
			return fmt.Errorf("write stock %s: %w: %w", key, ErrStorageWrite, err)
		}

		l.records <- domain.DeliveryRecord{
			ID:          uuid.New().String(),
			Warehouse:   item.Warehouse,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			AppliedAt:   time.Now(),
		}
	}

	return nil
}

// readStock treats an absent key as stock 0.
func (l *InventoryLedger) readStock(ctx context.Context, key string) (int, error) {
	value, ok, err := l.kv.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read stock %s: %w: %w", key, ErrStorageRead, err)
	}
	if !ok {
		return 0, nil
	}

	level, err := domain.ParseStock(value)
	if err != nil {
		return 0, fmt.Errorf("parse stock %s: %w: %w", key, ErrStorageRead, err)
	}
	return level, nil
}

// Records exposes the queue of applied line items awaiting durable
// persistence by the delivery-log workers.
func (l *InventoryLedger) Records() <-chan domain.DeliveryRecord {
	return l.records
}

func (l *InventoryLedger) Close() {
	close(l.records)
}
