package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Command defines a bot command with its handler key and Telegram menu description.
type Command struct {
	Name        string // Command name without slash (e.g., "start")
	Description string // Description shown in Telegram command menu
}

// botCommands defines the commands shown in the menu. /start, /upload and
// /status are left out: the first is sent by the client and the others are
// for admins only.
var botCommands = []Command{
	{Name: "info", Description: "Item details, e.g. /info 75100"},
	{Name: "price", Description: "Price guide, e.g. /price sw0547 USED"},
	{Name: "sold", Description: "Recent sales of an item"},
	{Name: "stock", Description: "Current listings of an item"},
	{Name: "search", Description: "Find sets by name"},
	{Name: "search_fig", Description: "Find minifigures by name"},
	{Name: "help", Description: "How to use this bot"},
}

// RegisterCommands sets the bot's command menu in Telegram.
// This should be called once at startup.
func RegisterCommands(tg MessageSender) {
	commands := make([]tgbotapi.BotCommand, len(botCommands))
	for i, cmd := range botCommands {
		commands[i] = tgbotapi.BotCommand{
			Command:     cmd.Name,
			Description: cmd.Description,
		}
	}

	config := tgbotapi.NewSetMyCommands(commands...)
	if _, err := tg.Request(config); err != nil {
		log.Error().Err(err).Msg("failed to set bot commands")
	} else {
		log.Info().Int("count", len(commands)).Msg("registered bot commands")
	}
}
