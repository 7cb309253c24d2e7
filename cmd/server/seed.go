package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable"
	"github.com/cuesoftinc/cuelabs-backend/internal/config"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/cuesoftinc/cuelabs-backend/internal/repository"
	"github.com/spf13/cobra"
)

type BountySeed struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Reward      int    `json:"reward"`
}

type MarketItemSeed struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Category    string `json:"category"`
}

type SeedFile struct {
	Bounties    []BountySeed     `json:"bounties"`
	MarketItems []MarketItemSeed `json:"market_items"`
}

var (
	seedFile   string
	strictSeed bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed bounties and market items from a JSON file",
	Long: `Seed the Airtable base with bounties and market items from a JSON file.

Expected JSON format:
{
  "bounties": [
    {"name": "Fix login flow", "description": "...", "reward": 100}
  ],
  "market_items": [
    {"name": "Sticker pack", "price": 50, "category": "Swag"}
  ]
}

By default, records that fail validation are skipped and logged. Use
--strict to fail on the first invalid record instead.`,
	Example: `  cuelabs seed -f seed.json
  cuelabs seed --file seed.json --strict`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSeed(); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "JSON file to seed from (required)")
	seedCmd.Flags().BoolVar(&strictSeed, "strict", false, "Fail on any validation error")
	seedCmd.MarkFlagRequired("file")
}

func runSeed() error {
	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	base := airtable.NewClient(cfg.Airtable.Endpoint, cfg.Airtable.BaseID, cfg.Airtable.APIKey)
	bountyRepo := repository.NewBountyRepository(base)
	marketRepo := repository.NewMarketRepository(base)

	ctx := context.Background()
	log.Printf("Seeding %d bounties and %d market items from %s",
		len(seed.Bounties), len(seed.MarketItems), seedFile)

	created := 0
	skipped := 0

	for _, b := range seed.Bounties {
		if err := seedBounty(ctx, bountyRepo, b); err != nil {
			if strictSeed {
				return fmt.Errorf("seed failed for bounty %q: %w", b.Name, err)
			}
			log.Printf("Skipped bounty %q: %v", b.Name, err)
			skipped++
			continue
		}
		created++
	}

	for _, m := range seed.MarketItems {
		if err := seedMarketItem(ctx, marketRepo, m); err != nil {
			if strictSeed {
				return fmt.Errorf("seed failed for item %q: %w", m.Name, err)
			}
			log.Printf("Skipped item %q: %v", m.Name, err)
			skipped++
			continue
		}
		created++
	}

	log.Printf("Seed complete: %d created, %d skipped", created, skipped)
	return nil
}

func seedBounty(ctx context.Context, repo *repository.BountyRepository, b BountySeed) error {
	if b.Name == "" {
		return fmt.Errorf("empty name")
	}
	if b.Reward <= 0 {
		return fmt.Errorf("reward must be positive")
	}

	bounty := &models.Bounty{
		BountyFields: models.BountyFields{
			Name:        b.Name,
			Description: b.Description,
			Reward:      b.Reward,
			Status:      models.BountyStatusNew,
		},
	}
	return repo.Create(ctx, bounty)
}

func seedMarketItem(ctx context.Context, repo *repository.MarketRepository, m MarketItemSeed) error {
	if m.Name == "" {
		return fmt.Errorf("empty name")
	}
	if m.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}

	item := &models.MarketItem{
		MarketItemFields: models.MarketItemFields{
			Name:        m.Name,
			Description: m.Description,
			Price:       m.Price,
			Category:    m.Category,
			InStock:     true,
		},
	}
	return repo.CreateItem(ctx, item)
}
