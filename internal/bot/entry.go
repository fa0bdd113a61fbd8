package bot

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
	"github.com/victordebonilla/Guardian-domestico/internal/service"
)

const noMemberLabel = "Sin miembro"

// startEntry begins the guided entry of a transaction of the given kind.
func (b *Bot) startEntry(ctx context.Context, message *tgbotapi.Message, kind model.Kind) error {
	sess, err := b.session(ctx, message.From.ID)
	if err != nil {
		b.sendFailure(message.Chat.ID, "start entry", err)
		return nil
	}

	st := &model.UserState{
		UserID:          message.From.ID,
		TransactionType: kind,
		AwaitingAction:  model.StepPickAccount,
		Options:         accountNames(sess),
	}
	b.setState(st)

	prompt := "¿Desde qué cuenta?"
	switch kind {
	case model.KindIncome:
		prompt = "¿A qué cuenta entra el dinero?"
	case model.KindExpense:
		prompt = "¿Con qué cuenta pagaste?"
	}
	msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("%s Nuevo registro: %s\n\n%s", kindIcon(kind), kind, prompt))
	msg.ReplyMarkup = b.getOptionsKeyboard(callbackAccount, st.Options)
	b.send(msg)
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
			b.log.Debug().Err(err).Msg("failed to answer callback")
		}
	}()
	if callback.Message == nil || callback.From == nil {
		return nil
	}
	chatID := callback.Message.Chat.ID
	userID := callback.From.ID

	if callback.Data == callbackCancel {
		b.clearState(userID)
		b.sendText(chatID, "Operación cancelada.")
		return nil
	}

	st, ok := b.state(userID)
	if !ok {
		b.sendErrorMessage(chatID, "La operación expiró. Empieza de nuevo con /gasto, /ingreso o /transferencia.")
		return nil
	}
	sess, err := b.session(ctx, userID)
	if err != nil {
		b.sendFailure(chatID, "callback", err)
		return nil
	}

	prefix, idx, ok := parseCallback(callback.Data)
	if !ok {
		b.sendErrorMessage(chatID, "Opción no válida.")
		return nil
	}
	next := *st

	switch {
	case next.AwaitingAction == model.StepPickAccount && prefix == callbackAccount:
		account, ok := pick(st.Options, idx)
		if !ok {
			break
		}
		next.Account = account
		if next.TransactionType == model.KindTransfer {
			options := service.DestinationOptions(sess, account)
			if len(options) == 0 {
				b.clearState(userID)
				b.sendErrorMessage(chatID, "No hay otra cuenta ni meta a la que transferir. Crea una con /nueva_cuenta o /nueva_meta.")
				return nil
			}
			next.AwaitingAction = model.StepPickDestination
			b.askOptions(chatID, &next, "¿A dónde va el dinero?", callbackDestination, options)
			return nil
		}
		categories := sess.Categories[next.TransactionType]
		if len(categories) == 0 {
			b.clearState(userID)
			b.sendErrorMessage(chatID, "No hay categorías para este tipo. Crea una con /nueva_categoria.")
			return nil
		}
		next.AwaitingAction = model.StepPickCategory
		b.askOptions(chatID, &next, "¿Qué categoría?", callbackCategory, slices.Clone(categories))
		return nil

	case next.AwaitingAction == model.StepPickCategory && prefix == callbackCategory:
		category, ok := pick(st.Options, idx)
		if !ok {
			break
		}
		next.Category = category
		next.AwaitingAction = model.StepPickFrequency
		b.askOptions(chatID, &next, "¿Se repite? Elige la frecuencia:", callbackFrequency, frequencyLabels())
		return nil

	case next.AwaitingAction == model.StepPickDestination && prefix == callbackDestination:
		destination, ok := pick(st.Options, idx)
		if !ok {
			break
		}
		next.Destination = destination
		b.askMemberOrAmount(chatID, sess, &next)
		return nil

	case next.AwaitingAction == model.StepPickFrequency && prefix == callbackFrequency:
		label, ok := pick(st.Options, idx)
		if !ok {
			break
		}
		freq, err := model.ParseFrequency(label)
		if err != nil {
			break
		}
		next.Frequency = freq
		b.askMemberOrAmount(chatID, sess, &next)
		return nil

	case next.AwaitingAction == model.StepPickMember && prefix == callbackMember:
		// The button after the members is "no member".
		if idx == len(st.Options) {
			next.Member = model.NotApplicable
		} else {
			member, ok := pick(st.Options, idx)
			if !ok {
				break
			}
			next.Member = member
		}
		next.Options = nil
		next.AwaitingAction = model.StepAwaitAmount
		b.setState(&next)
		b.askAmount(chatID)
		return nil
	}

	b.sendErrorMessage(chatID, "Opción no válida. Usa los botones del último mensaje.")
	return nil
}

// askOptions remembers the options in the entry state before showing them,
// so a callback resolves to what the user saw even if the session changes.
func (b *Bot) askOptions(chatID int64, st *model.UserState, prompt, prefix string, options []string) {
	b.askLabelled(chatID, st, prompt, prefix, options, options)
}

func (b *Bot) askLabelled(chatID int64, st *model.UserState, prompt, prefix string, options, labels []string) {
	st.Options = options
	b.setState(st)
	msg := tgbotapi.NewMessage(chatID, prompt)
	msg.ReplyMarkup = b.getOptionsKeyboard(prefix, labels)
	b.send(msg)
}

func (b *Bot) askMemberOrAmount(chatID int64, sess *service.Session, st *model.UserState) {
	if len(sess.Members) > 0 {
		members := slices.Clone([]string(sess.Members))
		st.AwaitingAction = model.StepPickMember
		b.askLabelled(chatID, st, "¿A qué miembro corresponde?", callbackMember, members, append(slices.Clone(members), noMemberLabel))
		return
	}
	st.Member = model.NotApplicable
	st.Options = nil
	st.AwaitingAction = model.StepAwaitAmount
	b.setState(st)
	b.askAmount(chatID)
}

func (b *Bot) askAmount(chatID int64) {
	b.sendText(chatID, "Escribe el monto y, si quieres, una descripción.\nEjemplo: 150.50 Supermercado")
}

// completeEntry stores the transaction once the amount arrives.
func (b *Bot) completeEntry(ctx context.Context, message *tgbotapi.Message, st *model.UserState) error {
	chatID := message.Chat.ID
	amount, description, err := parseEntry(message.Text)
	if err != nil || amount.Sign() <= 0 {
		b.sendErrorMessage(chatID, "Monto no válido. Escribe un número mayor que cero, por ejemplo: 150.50 Supermercado")
		return nil
	}
	sess, err := b.session(ctx, message.From.ID)
	if err != nil {
		b.sendFailure(chatID, "add transaction", err)
		return nil
	}

	tx, err := b.tracker.AddTransaction(ctx, sess, model.Transaction{
		Kind:        st.TransactionType,
		Category:    st.Category,
		Account:     st.Account,
		Amount:      amount,
		Description: description,
		Member:      st.Member,
		Destination: st.Destination,
		IsRecurring: st.Frequency != "" && st.Frequency != model.FrequencyOneOff,
		Frequency:   st.Frequency,
	})
	b.clearState(message.From.ID)
	if err != nil {
		b.sendFailure(chatID, "add transaction", err)
		return nil
	}

	text := fmt.Sprintf("✅ Registro guardado (%s)\n\n%s", tx.Kind, formatTransaction(tx))
	if idx := slices.IndexFunc(sess.Goals, func(g model.Goal) bool { return g.Name == tx.Destination }); idx >= 0 {
		g := sess.Goals[idx]
		text += fmt.Sprintf("\n\n🎯 %s: %s / %s (%s%%)", g.Name, service.Money(g.Contributed), service.Money(g.TargetAmount), g.Progress().StringFixed(1))
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = b.getMainKeyboard()
	b.send(msg)
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	switch strings.TrimSpace(message.Text) {
	case buttonExpense:
		return b.startEntry(ctx, message, model.KindExpense)
	case buttonIncome:
		return b.startEntry(ctx, message, model.KindIncome)
	case buttonTransfer:
		return b.startEntry(ctx, message, model.KindTransfer)
	case buttonDashboard:
		return b.handleDashboard(ctx, message)
	case buttonHistory:
		return b.handleHistory(ctx, message)
	case buttonGoals:
		return b.handleGoals(ctx, message)
	}

	if st, ok := b.state(message.From.ID); ok && st.AwaitingAction == model.StepAwaitAmount {
		return b.completeEntry(ctx, message, st)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "Elige una opción del teclado o escribe /ayuda.")
	msg.ReplyMarkup = b.getMainKeyboard()
	b.send(msg)
	return nil
}

func pick(options []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(options) {
		return "", false
	}
	return options[idx], true
}

func accountNames(sess *service.Session) []string {
	names := make([]string, 0, len(sess.Accounts))
	for _, a := range sess.Accounts {
		names = append(names, a.Name)
	}
	return names
}

func frequencyLabels() []string {
	labels := make([]string, 0, len(model.Frequencies))
	for _, f := range model.Frequencies {
		labels = append(labels, string(f))
	}
	return labels
}
