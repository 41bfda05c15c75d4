package telegram

import tele "gopkg.in/telebot.v4"

// SetupCommands publishes the visible command list to the Telegram command
// menu. Handler binding happens through routes, not here.
func SetupCommands(bot *tele.Bot, reg *Registry) {
	if bot == nil || reg == nil {
		return
	}
	InitBotCommands(bot, reg)
}
