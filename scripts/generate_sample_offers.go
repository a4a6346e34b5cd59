package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"cine-pos/internal/model"

	"github.com/shopspring/decimal"
)

// Writes a gzipped JSON-lines offer feed for local runs with
// OFFER_SOURCE=file. Offer 3 has already ended and offer 4 starts tomorrow,
// so only offers 1 and 2 are active today.
func main() {
	dataDir := "data/offers"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	offers := []model.Offer{
		{ID: 1, ProductID: 10, StartsAt: today, EndsAt: today.Add(7 * 24 * time.Hour), DiscountPercent: decimal.NewFromInt(20), Description: "Pipoca 20% off"},
		{ID: 2, ProductID: 11, StartsAt: today, EndsAt: today.Add(24*time.Hour - time.Second), DiscountPercent: decimal.NewFromInt(10), Description: "Refrigerante do dia"},
		{ID: 3, ProductID: 10, StartsAt: today.Add(-14 * 24 * time.Hour), EndsAt: today.Add(-7 * 24 * time.Hour), DiscountPercent: decimal.NewFromInt(50), Description: "Pré-estreia"},
		{ID: 4, ProductID: 12, StartsAt: today.Add(24 * time.Hour), EndsAt: today.Add(48 * time.Hour), DiscountPercent: decimal.RequireFromString("15.5"), Description: "Combo amanhã"},
	}

	filePath := filepath.Join(dataDir, "offers.jsonl.gz")
	if err := createOfferFile(filePath, offers); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d offers\n", filePath, len(offers))
	fmt.Println("\nActive today: 1 (product 10), 2 (product 11)")
	fmt.Println("Inactive: 3 (ended), 4 (starts tomorrow)")
}

func createOfferFile(filePath string, offers []model.Offer) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := json.NewEncoder(gzipWriter)
	for _, o := range offers {
		if err := encoder.Encode(o); err != nil {
			return fmt.Errorf("failed to write offer %d: %w", o.ID, err)
		}
	}

	return nil
}
