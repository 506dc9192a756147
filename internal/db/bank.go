package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sukalov/lyricbot/internal/lyrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS keyword_bank (
	theme TEXT NOT NULL,
	face  INTEGER NOT NULL,
	word  TEXT NOT NULL,
	PRIMARY KEY (theme, face)
);
CREATE TABLE IF NOT EXISTS template_bank (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	style    TEXT NOT NULL,
	section  TEXT NOT NULL,
	template TEXT NOT NULL
);`

// Migrate creates the bank tables when they do not exist.
func Migrate(ctx context.Context, database *sql.DB) error {
	if _, err := database.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create bank tables: %w", err)
	}
	return nil
}

// LoadBank reads keyword and template tables into a validated bank.
func LoadBank(ctx context.Context, database *sql.DB) (*lyrics.Bank, error) {
	bank := &lyrics.Bank{
		Keywords:  make(map[lyrics.Theme][]string),
		Templates: make(map[lyrics.Style]map[lyrics.Section][]string),
	}

	rows, err := database.QueryContext(ctx, `SELECT theme, face, word FROM keyword_bank ORDER BY theme, face`)
	if err != nil {
		return nil, fmt.Errorf("failed to query keyword bank: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			theme string
			face  int
			word  string
		)
		if err := rows.Scan(&theme, &face, &word); err != nil {
			return nil, fmt.Errorf("failed to scan keyword row: %w", err)
		}
		if face < 1 || face > lyrics.FacesPerTheme {
			return nil, fmt.Errorf("%w: theme %s face %d", lyrics.ErrOutOfRange, theme, face)
		}
		words := bank.Keywords[lyrics.Theme(theme)]
		if words == nil {
			words = make([]string, lyrics.FacesPerTheme)
			bank.Keywords[lyrics.Theme(theme)] = words
		}
		words[face-1] = word
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during keyword rows iteration: %w", err)
	}

	tplRows, err := database.QueryContext(ctx, `SELECT style, section, template FROM template_bank ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query template bank: %w", err)
	}
	defer tplRows.Close()

	for tplRows.Next() {
		var style, section, template string
		if err := tplRows.Scan(&style, &section, &template); err != nil {
			return nil, fmt.Errorf("failed to scan template row: %w", err)
		}
		sections := bank.Templates[lyrics.Style(style)]
		if sections == nil {
			sections = make(map[lyrics.Section][]string)
			bank.Templates[lyrics.Style(style)] = sections
		}
		sections[lyrics.Section(section)] = append(sections[lyrics.Section(section)], template)
	}
	if err := tplRows.Err(); err != nil {
		return nil, fmt.Errorf("error during template rows iteration: %w", err)
	}

	if err := bank.Validate(); err != nil {
		return nil, err
	}
	return bank, nil
}

// SaveBank replaces the stored bank with b in a single transaction.
func SaveBank(ctx context.Context, database *sql.DB, b *lyrics.Bank) error {
	if err := b.Validate(); err != nil {
		return err
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM keyword_bank`); err != nil {
		return fmt.Errorf("failed to clear keyword bank: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM template_bank`); err != nil {
		return fmt.Errorf("failed to clear template bank: %w", err)
	}

	for _, theme := range lyrics.Themes {
		for i, word := range b.Keywords[theme] {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO keyword_bank (theme, face, word) VALUES (?, ?, ?)`,
				string(theme), i+1, word); err != nil {
				return fmt.Errorf("failed to insert keyword %s/%d: %w", theme, i+1, err)
			}
		}
	}

	for _, style := range lyrics.Styles {
		for _, section := range lyrics.Sections {
			for _, template := range b.Templates[style][section] {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO template_bank (style, section, template) VALUES (?, ?, ?)`,
					string(style), string(section), template); err != nil {
					return fmt.Errorf("failed to insert template %s/%s: %w", style, section, err)
				}
			}
		}
	}

	return tx.Commit()
}
