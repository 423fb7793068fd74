package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"mediascout/internal/locale"
	"mediascout/internal/localization"
	"mediascout/pkg/database"
	"mediascout/pkg/models"
)

// Imports localized title/synopsis records from a CSV with the header
// item_id,locale,title,synopsis. Rows for unsupported locales are skipped
// with a warning.
func main() {
	_ = godotenv.Load()

	in := flag.String("in", "data/localizations.csv", "input CSV path")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	n, err := importLocalizations(ctx, localization.NewRepo(db), *in)
	if err != nil {
		log.Fatalf("import localizations failed: %v", err)
	}
	log.Printf("imported %d localization records from %s", n, *in)
}

func importLocalizations(ctx context.Context, repo *localization.Repo, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, err
	}

	imported := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, err
		}
		if len(row) == 0 {
			continue
		}

		rec := models.LocalizedText{
			ItemID:   valueAt(header, row, "item_id"),
			Locale:   valueAt(header, row, "locale"),
			Title:    valueAt(header, row, "title"),
			Synopsis: valueAt(header, row, "synopsis"),
		}
		if rec.ItemID == "" || rec.Locale == "" {
			continue
		}
		if !locale.Supported(rec.Locale) {
			log.Printf("skipping %s: unsupported locale %q", rec.ItemID, rec.Locale)
			continue
		}

		if err := repo.Upsert(ctx, rec); err != nil {
			return imported, fmt.Errorf("upsert %s/%s: %w", rec.ItemID, rec.Locale, err)
		}
		imported++
	}
	return imported, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
