// Command seed loads a YAML catalog into the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/footwear-shop/internal/config"
	"github.com/vasiliy-maslov/footwear-shop/internal/shoe"
	"github.com/vasiliy-maslov/footwear-shop/internal/storage"
	"gopkg.in/yaml.v3"
)

// placeholderImage is a 1x1 PNG used when an entry has no image.
const placeholderImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

type catalogFile struct {
	Shoes []catalogEntry `yaml:"shoes"`
}

type catalogEntry struct {
	Name        string   `yaml:"name"`
	Brand       string   `yaml:"brand"`
	Category    string   `yaml:"category"`
	Image       string   `yaml:"image"`
	Sizes       []string `yaml:"sizes"`
	Colors      []string `yaml:"colors"`
	Price       float64  `yaml:"price"`
	Stock       int      `yaml:"stock"`
	Description string   `yaml:"description"`
}

func (e catalogEntry) input() shoe.Input {
	image := e.Image
	if image == "" {
		image = placeholderImage
	}
	price, stock := e.Price, e.Stock
	return shoe.Input{
		Name:        e.Name,
		Brand:       e.Brand,
		Category:    shoe.Category(e.Category),
		Image:       image,
		Sizes:       e.Sizes,
		Colors:      e.Colors,
		Price:       &price,
		Stock:       &stock,
		Description: e.Description,
	}
}

func main() {
	path := flag.String("file", "seed/shoes.yaml", "catalog file to load")
	replace := flag.Bool("replace", false, "delete every existing shoe first")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if cfg.App.StorageDriver == config.StorageDriverMemory {
		log.Warn().Msg("Seeding the in-memory store has no lasting effect")
	}

	catalog, err := readCatalog(*path)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("Failed to read catalog")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repos, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer repos.Close()

	svc := shoe.NewService(repos.Shoes)

	if *replace {
		existing, err := repos.Shoes.All(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list existing shoes")
		}
		for _, s := range existing {
			if err := svc.DeleteShoe(ctx, s.ID); err != nil {
				log.Fatal().Err(err).Stringer("shoe_id", s.ID).Msg("Failed to delete shoe")
			}
		}
		log.Info().Int("deleted", len(existing)).Msg("Existing catalog removed")
	}

	created := 0
	for i, entry := range catalog.Shoes {
		if _, err := svc.CreateShoe(ctx, entry.input()); err != nil {
			log.Error().Err(err).Int("entry", i).Str("name", entry.Name).Msg("Skipping invalid catalog entry")
			continue
		}
		created++
	}

	log.Info().Int("created", created).Int("total", len(catalog.Shoes)).Msg("Catalog seeded")
}

func readCatalog(path string) (*catalogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var catalog catalogFile
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &catalog, nil
}
