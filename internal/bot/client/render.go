package client

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricbot/internal/bot"
	"github.com/sukalov/lyricbot/internal/export"
	"github.com/sukalov/lyricbot/internal/lyrics"
	"github.com/sukalov/lyricbot/internal/rhyme"
	"github.com/sukalov/lyricbot/internal/state"
)

const helpText = `lyric snippet generator

1. /theme — pick a theme
2. /roll — roll the dice to draw keywords
3. /keyword word — add your own keyword (/unkeyword word removes it)
4. /style — pick a music style
5. /scheme — pick a rhyme scheme
6. /generate — write the lyric (/generate 42 reuses a seed)

/regenerate — new take with the same selections
/snippet 4|6 — quick short snippet from your keywords
/export txt|md|html — download the last lyric
/status — your current selections
/reset — start over`

// RenderLyric formats a lyric for chat, with rhyme labels when the scheme
// has them.
func RenderLyric(l *lyrics.Lyric) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎵 %s · %s · seed %d\n", l.Style, l.Scheme, l.Seed)

	index := 0
	for _, section := range lyrics.Sections {
		lines := l.Section(section)
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", strings.ToUpper(string(section)))
		for _, line := range lines {
			if label := rhyme.Label(index, l.Scheme); label != "" {
				fmt.Fprintf(&b, "%s  %s\n", label, line)
			} else {
				b.WriteString(line + "\n")
			}
			index++
		}
	}

	b.WriteString("\n" + RenderValidation(l.Scheme, l.Validation.Overall))
	return b.String()
}

// RenderValidation describes a rhyme check result.
func RenderValidation(scheme rhyme.Scheme, res rhyme.Result) string {
	switch {
	case scheme == rhyme.SchemeFree:
		return "free verse, no rhyme check"
	case res.Total == 0:
		return "rhyme check: nothing to compare"
	case res.Valid:
		return fmt.Sprintf("rhyme check: %d/%d ✓", res.Matches, res.Total)
	}
	return fmt.Sprintf("rhyme check: %d/%d ✗ (some lines did not find a rhyme)", res.Matches, res.Total)
}

// MissingSelectionText tells the user what to do next.
func MissingSelectionText(err *state.MissingSelectionError, s state.Session) string {
	switch err.Selection {
	case state.SelectionTheme:
		return "pick a theme first: /theme"
	case state.SelectionRolls:
		return fmt.Sprintf("roll the dice first: %d roll(s) left. /roll", s.RollsLeft())
	case state.SelectionStyle:
		return "pick a music style: /style"
	case state.SelectionScheme:
		return "pick a rhyme scheme: /scheme"
	}
	return err.Error()
}

func themeKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(lyrics.Themes); i += 3 {
		var row []tgbotapi.InlineKeyboardButton
		for _, theme := range lyrics.Themes[i:min(i+3, len(lyrics.Themes))] {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(string(theme), bot.CallbackData(callbackTheme, string(theme))))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func styleKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, style := range lyrics.Styles {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(string(style), bot.CallbackData(callbackStyle, string(style))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func schemeKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, scheme := range rhyme.Schemes {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(string(scheme), bot.CallbackData(callbackScheme, string(scheme))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func schemeChoices() string {
	var b strings.Builder
	b.WriteString("pick a rhyme scheme:\n")
	for _, scheme := range rhyme.Schemes {
		fmt.Fprintf(&b, "\n%s — %s", scheme, scheme.Description())
	}
	return b.String()
}

func rollKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🎲 roll", bot.CallbackData(callbackRoll, "")),
	))
}

func generateKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✍️ generate", bot.CallbackData(callbackGenerate, "")),
	))
}

func lyricKeyboard() tgbotapi.InlineKeyboardMarkup {
	exports := make([]tgbotapi.InlineKeyboardButton, 0, len(export.Formats))
	for _, f := range export.Formats {
		exports = append(exports, tgbotapi.NewInlineKeyboardButtonData("⬇️ "+string(f), bot.CallbackData(callbackExport, string(f))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔁 regenerate", bot.CallbackData(callbackGenerate, ""))),
		exports,
	)
}
