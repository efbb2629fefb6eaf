package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/beaconhq/beacon-go/pkg/client"
	"github.com/beaconhq/beacon-go/pkg/query"
	"github.com/beaconhq/beacon-go/pkg/results"
)

func main() {
	apiKey := os.Getenv("BEACON_API_KEY")
	if apiKey == "" {
		log.Fatal("BEACON_API_KEY is required")
	}
	dataset := os.Getenv("BEACON_DATASET")
	if dataset == "" {
		dataset = "production"
	}

	c := client.New(apiKey)

	spec, err := query.NewBuilder().
		Calculate(query.OpCount, "").
		Calculate(query.OpP99, "duration_ms").As("p99_latency").
		GroupBy("service", "endpoint").
		Where("status_code", query.FilterGTE, 500).
		Since(24 * time.Hour).
		Build()
	if err != nil {
		log.Fatalf("Failed to build query: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	m := results.New(c.QueryRunner(dataset))
	rows, err := m.Materialize(ctx, spec,
		results.WithSortKey("COUNT"),
		results.WithMaxResults(50000),
		results.WithOnPage(func(page, total int) {
			log.Printf("page %d: %d rows accumulated", page, total)
		}),
	)
	if err != nil {
		log.Fatalf("Failed to materialize query: %v", err)
	}

	fmt.Printf("retrieved %d rows\n", len(rows))
	for i, row := range rows {
		if i >= 10 {
			fmt.Printf("... and %d more\n", len(rows)-10)
			break
		}
		fmt.Printf("%s %s count=%v p99=%v\n",
			row["service"], row["endpoint"], row["COUNT"], row["p99_latency"])
	}
}
