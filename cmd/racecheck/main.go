// Command racecheck hammers one stock key with concurrent delivery
// batches against a live Redis to show the ledger's read-then-write
// lost-update race. With no compare-and-swap the final stock level is
// usually higher than initial - requests, meaning decrements were lost.
package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rzaw/delivery-proof/internal/adapter/storage"
	"github.com/rzaw/delivery-proof/internal/core/domain"
	"github.com/rzaw/delivery-proof/internal/core/service"
)

const (
	redisAddr     = "localhost:6379"
	warehouse     = "race-wh"
	productName   = "race-product"
	initialStock  = 1000
	totalRequests = 200
	queueSize     = 1000
)

func main() {
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	kv := storage.NewRedisAdapter(rdb)

	stockKey := domain.StockKey(warehouse, productName)
	if err := kv.Put(ctx, stockKey, domain.FormatStock(initialStock)); err != nil {
		log.Fatalf("failed to seed stock: %v", err)
	}

	ledger := service.NewInventoryLedger(kv, queueSize)
	defer ledger.Close()

	// Drain the delivery log queue
	go func() {
		for range ledger.Records() {
		}
	}()

	var successCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := ledger.ApplyDeliveryBatch(ctx, []domain.DeliveryLineItem{
				{ProductName: productName, Quantity: 1, Warehouse: warehouse},
			})
			if err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	value, _, err := kv.Get(ctx, stockKey)
	if err != nil {
		log.Fatalf("failed to read final stock: %v", err)
	}
	finalStock, _ := domain.ParseStock(value)

	expected := initialStock - int(successCount.Load())
	lost := finalStock - expected

	fmt.Println("========== RACE CHECK RESULTS ==========")
	fmt.Printf("Initial Stock:     %d\n", initialStock)
	fmt.Printf("Total Requests:    %d\n", totalRequests)
	fmt.Printf("Successful:        %d\n", successCount.Load())
	fmt.Printf("Failed:            %d\n", failCount.Load())
	fmt.Printf("Expected Final:    %d\n", expected)
	fmt.Printf("Actual Final:      %d\n", finalStock)
	fmt.Printf("Lost Updates:      %d\n", lost)
	fmt.Printf("Duration:          %v\n", elapsed)
	fmt.Println("========================================")

	if lost > 0 {
		fmt.Printf("RACE OBSERVED: %d decrements were lost to concurrent read-then-write\n", lost)
	} else {
		fmt.Println("no lost updates this run; retry, the interleaving is timing-dependent")
	}
}
