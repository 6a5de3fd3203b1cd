// Command history-report prints the historical low for every shopping-list
// product from the per-supermarket price ledgers. Offline companion to the
// main pipeline; reads the same products file and history directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aalabort/Grocefy/internal/csvio"
	"github.com/aalabort/Grocefy/internal/ledger"
	"github.com/aalabort/Grocefy/internal/logger"
	"github.com/aalabort/Grocefy/internal/memory"
)

var (
	productsPath = flag.String("products", "data/products.csv", "Path to the products CSV")
	historyDir   = flag.String("history", "data/history", "Path to the ledger directory")
)

func main() {
	flag.Parse()
	logger.Init("warn", "text")

	products, err := csvio.ReadProducts(*productsPath)
	if err != nil {
		log.Fatalf("Failed to read products: %v", err)
	}

	store := ledger.NewStore(*historyDir, 0, 0)
	service := memory.NewService(store)

	supermarkets, err := store.Supermarkets()
	if err != nil {
		log.Fatalf("Failed to list ledgers: %v", err)
	}
	if len(supermarkets) == 0 {
		fmt.Println("No price history recorded yet.")
		os.Exit(0)
	}
	fmt.Printf("Price history across %d supermarkets:\n\n", len(supermarkets))

	for _, p := range products {
		low, err := service.LowestEver(p.Name)
		if err != nil {
			log.Fatalf("History lookup failed for %q: %v", p.Name, err)
		}
		if low == nil {
			fmt.Printf("%-40s no history\n", p.Name)
			continue
		}
		fmt.Printf("%-40s lowest ever %s\n", p.Name, low)
	}
}
