package bot

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Labels of the persistent reply keyboard.
const (
	buttonExpense   = "💸 Gasto"
	buttonIncome    = "💰 Ingreso"
	buttonTransfer  = "🔁 Transferencia"
	buttonDashboard = "📊 Dashboard"
	buttonHistory   = "📜 Historial"
	buttonGoals     = "🎯 Metas"
)

// Callback data prefixes of the guided entry.
const (
	callbackAccount     = "acc"
	callbackCategory    = "cat"
	callbackDestination = "dst"
	callbackFrequency   = "frq"
	callbackMember      = "mem"
	callbackCancel      = "cancel"
)

const buttonsPerRow = 2

func (b *Bot) getMainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonExpense),
			tgbotapi.NewKeyboardButton(buttonIncome),
			tgbotapi.NewKeyboardButton(buttonTransfer),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonDashboard),
			tgbotapi.NewKeyboardButton(buttonHistory),
			tgbotapi.NewKeyboardButton(buttonGoals),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// getOptionsKeyboard lists options by position. Callback data carries the
// index so long names stay within Telegram's 64 byte limit.
func (b *Bot) getOptionsKeyboard(prefix string, options []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, opt := range options {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(opt, callbackData(prefix, i)))
		if len(row) == buttonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✖️ Cancelar", callbackCancel),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func callbackData(prefix string, index int) string {
	return prefix + ":" + strconv.Itoa(index)
}

// parseCallback splits "acc:2" into its prefix and index.
func parseCallback(data string) (string, int, bool) {
	prefix, idx, ok := strings.Cut(data, ":")
	if !ok {
		return data, 0, false
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 {
		return prefix, 0, false
	}
	return prefix, n, true
}
