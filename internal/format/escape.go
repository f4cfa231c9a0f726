// Package format renders catalog results as Telegram MarkdownV2 replies with
// inline follow-up actions.
package format

import (
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var extraEscapes = strings.NewReplacer(
	"&", `\&`,
	"<", `\<`,
)

// Escape makes plain text safe for MarkdownV2. It must be applied once per
// assembled message, never to fragments that are escaped again later.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
	return extraEscapes.Replace(s)
}

// unescapeName decodes the HTML entities BrickLink leaves in item names.
func unescapeName(s string) string {
	return html.UnescapeString(s)
}
