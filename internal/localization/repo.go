// Package localization is the persistence boundary for localized text:
// title/synopsis records keyed by (item_id, locale), fetched in bulk during
// result assembly and written by the admin surface and the CSV importer.
package localization

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mediascout/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// BulkGet fetches every stored record for the given item ids and locales in
// one query, keyed as map[itemID][locale]. Missing combinations are simply
// absent; the caller walks its fallback chain over the result.
func (r *Repo) BulkGet(ctx context.Context, itemIDs, locales []string) (map[string]map[string]models.LocalizedText, error) {
	out := make(map[string]map[string]models.LocalizedText)
	if len(itemIDs) == 0 || len(locales) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(itemIDs)+len(locales))
	for _, id := range itemIDs {
		args = append(args, id)
	}
	for _, loc := range locales {
		args = append(args, loc)
	}

	query := fmt.Sprintf(`
		SELECT item_id, locale, title, synopsis
		FROM localizations
		WHERE item_id IN (%s) AND locale IN (%s)
	`, placeholders(len(itemIDs)), placeholders(len(locales)))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("bulk get localizations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec      models.LocalizedText
			title    sql.NullString
			synopsis sql.NullString
		)
		if err := rows.Scan(&rec.ItemID, &rec.Locale, &title, &synopsis); err != nil {
			return nil, fmt.Errorf("scan localization: %w", err)
		}
		rec.Title = title.String
		rec.Synopsis = synopsis.String

		if out[rec.ItemID] == nil {
			out[rec.ItemID] = make(map[string]models.LocalizedText)
		}
		out[rec.ItemID][rec.Locale] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("localization rows: %w", err)
	}
	return out, nil
}

// Upsert writes one localization record, replacing any existing one for the
// same (item_id, locale).
func (r *Repo) Upsert(ctx context.Context, rec models.LocalizedText) error {
	if strings.TrimSpace(rec.ItemID) == "" || strings.TrimSpace(rec.Locale) == "" {
		return fmt.Errorf("localization upsert: item_id and locale are required")
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO localizations (item_id, locale, title, synopsis)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(item_id, locale) DO UPDATE SET
		  title = excluded.title,
		  synopsis = excluded.synopsis
	`, rec.ItemID, rec.Locale, rec.Title, rec.Synopsis)
	if err != nil {
		return fmt.Errorf("upsert localization: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
