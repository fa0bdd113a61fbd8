package bot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/victordebonilla/Guardian-domestico/internal/ledger"
	"github.com/victordebonilla/Guardian-domestico/internal/logger"
	"github.com/victordebonilla/Guardian-domestico/internal/model"
	"github.com/victordebonilla/Guardian-domestico/internal/service"
)

const (
	maxImportSize  = 10 << 20
	replaceCaption = "reemplazar"
)

const helpText = "🛡️ Guardian Doméstico\n\n" +
	"Registros\n" +
	"/gasto, /ingreso, /transferencia - registro guiado\n" +
	"/historial [n] - últimas transacciones\n" +
	"/borrar id [id...] - borrar transacciones\n\n" +
	"Análisis\n" +
	"/dash - métricas y gráficos\n" +
	"/filtro - periodo, tipo y miembro del análisis\n" +
	"/presupuesto - presupuesto del periodo\n" +
	"/presupuesto_cat Categoría; Monto - tope por categoría\n\n" +
	"Catálogo\n" +
	"/cuentas, /nueva_cuenta, /borrar_cuenta\n" +
	"/categorias, /nueva_categoria, /borrar_categoria\n" +
	"/miembros, /nuevo_miembro, /borrar_miembro\n" +
	"/metas, /nueva_meta, /borrar_meta\n\n" +
	"Datos\n" +
	"/exportar - descargar el historial en CSV\n" +
	"Envía un archivo CSV para importarlo (escribe \"reemplazar\" en el pie para sustituir el historial)\n\n" +
	"/asistente - configuración inicial\n" +
	"/salir - cerrar la sesión"

const setupHelp = "🧭 Asistente de configuración\n\n" +
	"Envía en un solo mensaje, separado por punto y coma:\n" +
	"/asistente Miembros; Ingreso; Frecuencia; Quién lo recibe; Cuenta; Saldo; Meta; Objetivo; Días\n\n" +
	"Ejemplo:\n" +
	"/asistente Ana, Luis; 1500; Quincenal; Ana; Nómina; 250; Fondo de Emergencia; 3000; 180\n\n" +
	"Frecuencias: Quincenal, Mensual, Semanal, Bimensual, Anual"

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	cmd := message.Command()
	args := message.CommandArguments()
	b.log.Debug().Int64("user_id", message.From.ID).Str("command", cmd).Msg("command received")

	switch cmd {
	case "start":
		return b.handleStart(ctx, message)
	case "salir":
		b.closeSession(message.From.ID)
		msg := tgbotapi.NewMessage(message.Chat.ID, "👋 Sesión cerrada. Escribe /start para volver.")
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
		b.send(msg)
		return nil
	case "ayuda", "help":
		b.sendText(message.Chat.ID, helpText)
		return nil
	case "gasto":
		return b.startEntry(ctx, message, model.KindExpense)
	case "ingreso":
		return b.startEntry(ctx, message, model.KindIncome)
	case "transferencia":
		return b.startEntry(ctx, message, model.KindTransfer)
	case "cancelar":
		b.clearState(message.From.ID)
		b.sendText(message.Chat.ID, "Operación cancelada.")
		return nil
	case "dash":
		return b.handleDashboard(ctx, message)
	case "historial":
		return b.handleHistory(ctx, message)
	case "metas":
		return b.handleGoals(ctx, message)
	case "exportar":
		return b.handleExport(ctx, message)
	}

	sess, err := b.session(ctx, message.From.ID)
	if err != nil {
		b.sendFailure(message.Chat.ID, cmd, err)
		return nil
	}
	chatID := message.Chat.ID

	switch cmd {
	case "borrar":
		return b.handleDelete(ctx, message, sess, args)
	case "cuentas":
		b.sendText(chatID, formatAccounts(ledger.AccountBalances(sess.Transactions, sess.Accounts)))
	case "nueva_cuenta":
		parts := splitArgs(args)
		if len(parts) == 0 {
			b.sendText(chatID, "Uso: /nueva_cuenta Nombre; Tipo; Saldo inicial")
			return nil
		}
		accountType, initial := "", decimal.Zero
		if len(parts) > 1 {
			accountType = parts[1]
		}
		if len(parts) > 2 && parts[2] != "" {
			if initial, err = parseAmount(parts[2]); err != nil {
				b.sendFailure(chatID, cmd, err)
				return nil
			}
		}
		b.reply(chatID, cmd, b.tracker.AddAccount(ctx, sess, parts[0], accountType, initial), "✅ Cuenta creada: "+parts[0])
	case "borrar_cuenta":
		name := strings.TrimSpace(args)
		b.reply(chatID, cmd, b.tracker.DeleteAccount(ctx, sess, name), "🗑️ Cuenta borrada: "+name)
	case "categorias":
		b.sendText(chatID, formatCategories(sess.Categories, sess.CategoryBudgets))
	case "nueva_categoria", "borrar_categoria":
		parts := splitArgs(args)
		if len(parts) != 2 {
			b.sendText(chatID, fmt.Sprintf("Uso: /%s Gasto; Nombre  (o Ingreso; Nombre)", cmd))
			return nil
		}
		kind, err := model.ParseKind(parts[0])
		if err != nil {
			b.sendFailure(chatID, cmd, fmt.Errorf("%w: %v", service.ErrInvalidKind, err))
			return nil
		}
		if cmd == "nueva_categoria" {
			b.reply(chatID, cmd, b.tracker.AddCategory(ctx, sess, kind, parts[1]), "✅ Categoría creada: "+parts[1])
		} else {
			b.reply(chatID, cmd, b.tracker.DeleteCategory(ctx, sess, kind, parts[1]), "🗑️ Categoría borrada: "+parts[1])
		}
	case "miembros":
		b.sendText(chatID, formatMembers(sess.Members))
	case "nuevo_miembro":
		name := strings.TrimSpace(args)
		b.reply(chatID, cmd, b.tracker.AddMember(ctx, sess, name), "✅ Miembro añadido: "+name)
	case "borrar_miembro":
		name := strings.TrimSpace(args)
		b.reply(chatID, cmd, b.tracker.DeleteMember(ctx, sess, name), "🗑️ Miembro borrado: "+name)
	case "nueva_meta":
		return b.handleNewGoal(ctx, message, sess, args)
	case "borrar_meta":
		name := strings.TrimSpace(args)
		b.reply(chatID, cmd, b.tracker.DeleteGoal(ctx, sess, name), "🗑️ Meta borrada: "+name)
	case "presupuesto":
		return b.handleBudget(ctx, message, sess, args)
	case "presupuesto_cat":
		parts := splitArgs(args)
		if len(parts) != 2 {
			b.sendText(chatID, "Uso: /presupuesto_cat Categoría; Monto  (0 quita el tope)")
			return nil
		}
		amount, err := parseAmount(parts[1])
		if err != nil {
			b.sendFailure(chatID, cmd, err)
			return nil
		}
		b.reply(chatID, cmd, b.tracker.SetCategoryBudget(ctx, sess, parts[0], amount),
			fmt.Sprintf("✅ Tope de %s: %s", parts[0], service.Money(amount)))
	case "filtro":
		return b.handleFilter(message, sess, args)
	case "asistente":
		return b.handleSetup(ctx, message, sess, args)
	default:
		b.sendText(chatID, "No conozco ese comando. Escribe /ayuda.")
	}
	return nil
}

// reply confirms a mutation or reports why it was refused.
func (b *Bot) reply(chatID int64, action string, err error, success string) {
	if err != nil {
		b.sendFailure(chatID, action, err)
		return
	}
	b.sendText(chatID, success)
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	b.closeSession(message.From.ID)
	sess, err := b.session(ctx, message.From.ID)
	if err != nil {
		b.sendFailure(message.Chat.ID, "start", err)
		return nil
	}

	name := message.From.FirstName
	if name == "" {
		name = "hola"
	}
	text := fmt.Sprintf("🛡️ ¡Bienvenido/a a Guardian Doméstico, %s!\n\n", name)
	if sess.NeedsSetup {
		text += "Parece que es tu primera vez. Configura tu hogar en un paso:\n\n" + setupHelp
	} else {
		dash := b.tracker.Dashboard(sess)
		text += fmt.Sprintf("Balance neto: %s\nPresupuesto restante: %s\n\nEscribe /ayuda para ver todo lo que puedo hacer.",
			service.Money(dash.Totals.Net), service.Money(dash.Budget.Remaining))
	}
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyMarkup = b.getMainKeyboard()
	b.send(msg)
	return nil
}

func (b *Bot) handleDashboard(ctx context.Context, message *tgbotapi.Message) error {
	sess, err := b.session(ctx, message.From.ID)
	if err != nil {
		b.sendFailure(message.Chat.ID, "dashboard", err)
		return nil
	}
	chatID := message.Chat.ID
	if len(sess.Transactions) == 0 {
		b.sendText(chatID, "📊 Aún no hay transacciones. Empieza con /gasto o /ingreso.")
		return nil
	}

	dash := b.tracker.Dashboard(sess)
	b.sendText(chatID, dash.Text)

	img, err := b.charts.AccountBalances(dash.Accounts)
	b.sendPhoto(chatID, "saldos", img, err)
	img, err = b.charts.CategoryUsage(dash.Usage)
	b.sendPhoto(chatID, "presupuesto_categorias", img, err)
	img, err = b.charts.Goals(dash.Goals)
	b.sendPhoto(chatID, "metas", img, err)
	img, err = b.charts.Distribution("Distribución de gastos", dash.ExpenseDistribution)
	b.sendPhoto(chatID, "gastos", img, err)
	img, err = b.charts.Distribution("Distribución de ingresos", dash.IncomeDistribution)
	b.sendPhoto(chatID, "ingresos", img, err)
	img, err = b.charts.CashFlow(dash.Flow)
	b.sendPhoto(chatID, "flujo", img, err)
	img, err = b.charts.Weekday(dash.Weekday)
	b.sendPhoto(chatID, "dias", img, err)
	return nil
}

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) error {
	sess, err := b.session(ctx, message.From.ID)
	if err != nil {
		b.sendFailure(message.Chat.ID, "history", err)
		return nil
	}
	n := historyLength
	if args := strings.TrimSpace(message.CommandArguments()); args != "" {
		if v, err := strconv.Atoi(args); err == nil && v > 0 {
			n = v
		}
	}
	b.sendText(message.Chat.ID, formatHistory(b.tracker.Recent(sess, n), len(sess.Transactions)))
	return nil
}

func (b *Bot) handleGoals(ctx context.Context, message *tgbotapi.Message) error {
	sess, err := b.session(ctx, message.From.ID)
	if err != nil {
		b.sendFailure(message.Chat.ID, "goals", err)
		return nil
	}
	b.sendText(message.Chat.ID, formatGoals(sess.Goals))
	return nil
}

// handleDelete accepts full ids or the short prefixes shown by /historial.
func (b *Bot) handleDelete(ctx context.Context, message *tgbotapi.Message, sess *service.Session, args string) error {
	chatID := message.Chat.ID
	prefixes := strings.Fields(args)
	if len(prefixes) == 0 {
		b.sendText(chatID, "Uso: /borrar id [id...]  (los ids aparecen en /historial)")
		return nil
	}

	ids := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		id, err := resolveID(sess.Transactions, p)
		if err != nil {
			b.sendFailure(chatID, "delete", err)
			return nil
		}
		ids = append(ids, id)
	}
	b.reply(chatID, "delete", b.tracker.DeleteTransactions(ctx, sess, ids...),
		fmt.Sprintf("🗑️ %d transacción(es) borrada(s).", len(ids)))
	return nil
}

// resolveID finds the single transaction whose id starts with prefix.
func resolveID(txs []model.Transaction, prefix string) (string, error) {
	var match string
	for _, t := range txs {
		if !strings.HasPrefix(t.ID, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("ambiguous id %q: %w", prefix, service.ErrNotFound)
		}
		match = t.ID
	}
	if match == "" {
		return "", fmt.Errorf("transaction %q: %w", prefix, service.ErrNotFound)
	}
	return match, nil
}

func (b *Bot) handleNewGoal(ctx context.Context, message *tgbotapi.Message, sess *service.Session, args string) error {
	chatID := message.Chat.ID
	parts := splitArgs(args)
	if len(parts) < 2 {
		b.sendText(chatID, "Uso: /nueva_meta Nombre; Objetivo; AAAA-MM-DD")
		return nil
	}
	target, err := parseAmount(parts[1])
	if err != nil {
		b.sendFailure(chatID, "new goal", err)
		return nil
	}
	var date time.Time
	if len(parts) > 2 && parts[2] != "" {
		if date, err = parseDay(parts[2]); err != nil {
			b.sendFailure(chatID, "new goal", err)
			return nil
		}
	}
	b.reply(chatID, "new goal", b.tracker.AddGoal(ctx, sess, parts[0], target, date),
		fmt.Sprintf("🎯 Meta creada: %s (%s)", parts[0], service.Money(target)))
	return nil
}

func (b *Bot) handleBudget(ctx context.Context, message *tgbotapi.Message, sess *service.Session, args string) error {
	chatID := message.Chat.ID
	parts := splitArgs(args)
	if len(parts) == 0 {
		dash := b.tracker.Dashboard(sess)
		b.sendText(chatID, formatBudget(dash.BudgetCfg, dash.Budget))
		return nil
	}
	if len(parts) != 3 {
		b.sendText(chatID, "Uso: /presupuesto AAAA-MM-DD; AAAA-MM-DD; Monto")
		return nil
	}
	start, err := parseDay(parts[0])
	if err != nil {
		b.sendFailure(chatID, "budget", err)
		return nil
	}
	end, err := parseDay(parts[1])
	if err != nil {
		b.sendFailure(chatID, "budget", err)
		return nil
	}
	amount, err := parseAmount(parts[2])
	if err != nil {
		b.sendFailure(chatID, "budget", err)
		return nil
	}
	if err := b.tracker.UpdateBudget(ctx, sess, start, end, amount); err != nil {
		b.sendFailure(chatID, "budget", err)
		return nil
	}
	dash := b.tracker.Dashboard(sess)
	b.sendText(chatID, "✅ Presupuesto actualizado\n\n"+formatBudget(dash.BudgetCfg, dash.Budget))
	return nil
}

func (b *Bot) handleFilter(message *tgbotapi.Message, sess *service.Session, args string) error {
	chatID := message.Chat.ID
	parts := splitArgs(args)
	switch {
	case len(parts) == 0:
		b.sendText(chatID, formatFilter(sess.Filter))
		return nil
	case len(parts) == 1 && strings.EqualFold(parts[0], "reset"):
		b.tracker.ResetFilter(sess)
		b.sendText(chatID, "✅ Filtro restablecido\n\n"+formatFilter(sess.Filter))
		return nil
	case len(parts) < 2:
		b.sendText(chatID, "Uso: /filtro AAAA-MM-DD; AAAA-MM-DD; Tipo; Miembro")
		return nil
	}

	f, err := parseFilter(parts, sess.Members)
	if err != nil {
		b.sendFailure(chatID, "filter", err)
		return nil
	}
	if err := b.tracker.SetFilter(sess, f); err != nil {
		b.sendFailure(chatID, "filter", err)
		return nil
	}
	b.sendText(chatID, "✅ Filtro aplicado\n\n"+formatFilter(sess.Filter))
	return nil
}

// parseFilter reads "from; to; kind; member". Kind and member accept
// "Todos" for no restriction.
func parseFilter(parts []string, members model.Members) (ledger.Filter, error) {
	var f ledger.Filter
	var err error
	if f.From, err = parseDay(parts[0]); err != nil {
		return f, err
	}
	if f.To, err = parseDay(parts[1]); err != nil {
		return f, err
	}
	if len(parts) > 2 && parts[2] != "" && !strings.EqualFold(parts[2], "todos") {
		kind, err := model.ParseKind(parts[2])
		if err != nil {
			return f, fmt.Errorf("%w: %v", service.ErrInvalidKind, err)
		}
		f.Kind = kind
	}
	if len(parts) > 3 && parts[3] != "" && !strings.EqualFold(parts[3], "todos") {
		if !members.Has(parts[3]) {
			return f, fmt.Errorf("member %q: %w", parts[3], service.ErrNotFound)
		}
		f.Member = parts[3]
	}
	return f, nil
}

func (b *Bot) handleSetup(ctx context.Context, message *tgbotapi.Message, sess *service.Session, args string) error {
	chatID := message.Chat.ID
	if !sess.NeedsSetup {
		b.sendFailure(chatID, "setup", service.ErrAlreadyConfigured)
		return nil
	}
	parts := splitArgs(args)
	if len(parts) != 9 {
		b.sendText(chatID, setupHelp)
		return nil
	}

	in, err := parseSetup(parts)
	if err != nil {
		b.sendFailure(chatID, "setup", err)
		return nil
	}
	res, err := b.tracker.RunSetup(ctx, sess, in)
	if err != nil {
		b.sendFailure(chatID, "setup", err)
		return nil
	}

	text := "🎉 ¡Tu hogar está listo!\n\n"
	if res.Reassigned {
		text += fmt.Sprintf("ℹ️ El ingreso principal se asignó a %s.\n\n", res.IncomeMember)
	}
	text += b.tracker.Dashboard(sess).Text
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = b.getMainKeyboard()
	b.send(msg)
	return nil
}

// parseSetup reads the nine wizard fields.
func parseSetup(parts []string) (service.SetupInput, error) {
	var in service.SetupInput
	for _, m := range strings.Split(parts[0], ",") {
		if m = strings.TrimSpace(m); m != "" {
			in.Members = append(in.Members, m)
		}
	}

	var err error
	if in.IncomeAmount, err = parseAmount(parts[1]); err != nil {
		return in, err
	}
	freq, err := model.ParseFrequency(parts[2])
	if err != nil || !slices.Contains(model.IncomeFrequencies, freq) {
		return in, fmt.Errorf("%w: %q", errInvalidFrequency, parts[2])
	}
	in.IncomeFrequency = freq
	in.IncomeMember = parts[3]
	in.AccountName = parts[4]
	if parts[5] != "" {
		if in.AccountBalance, err = parseAmount(parts[5]); err != nil {
			return in, err
		}
	}
	in.GoalName = parts[6]
	if in.GoalTarget, err = parseAmount(parts[7]); err != nil {
		return in, err
	}
	if in.GoalDays, err = strconv.Atoi(parts[8]); err != nil {
		return in, fmt.Errorf("%w: días %q", service.ErrInvalidPeriod, parts[8])
	}
	return in, nil
}

func (b *Bot) handleExport(ctx context.Context, message *tgbotapi.Message) error {
	sess, err := b.session(ctx, message.From.ID)
	if err != nil {
		b.sendFailure(message.Chat.ID, "export", err)
		return nil
	}
	if len(sess.Transactions) == 0 {
		b.sendText(message.Chat.ID, "📜 No hay transacciones para exportar.")
		return nil
	}

	var buf bytes.Buffer
	if err := b.tracker.ExportCSV(&buf, sess); err != nil {
		b.sendFailure(message.Chat.ID, "export", err)
		return nil
	}
	doc := tgbotapi.NewDocument(message.Chat.ID, tgbotapi.FileBytes{
		Name:  service.ExportFileName(b.tracker.Today()),
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("📥 %d transacciones", len(sess.Transactions))
	b.send(doc)
	return nil
}

// handleDocument imports an uploaded CSV history.
func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	doc := message.Document
	if !strings.HasSuffix(strings.ToLower(doc.FileName), ".csv") {
		b.sendErrorMessage(chatID, "Solo puedo importar archivos .csv.")
		return nil
	}
	if doc.FileSize > maxImportSize {
		b.sendErrorMessage(chatID, "El archivo es demasiado grande.")
		return nil
	}
	sess, err := b.session(ctx, message.From.ID)
	if err != nil {
		b.sendFailure(chatID, "import", err)
		return nil
	}

	data, err := b.download(ctx, doc.FileID)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("file", doc.FileName).Msg("failed to download upload")
		b.sendErrorMessage(chatID, "No pude descargar el archivo.")
		return nil
	}

	replace := strings.EqualFold(strings.TrimSpace(message.Caption), replaceCaption)
	summary, err := b.tracker.ImportCSV(ctx, sess, bytes.NewReader(data), replace)
	if err != nil {
		b.sendFailure(chatID, "import", err)
		return nil
	}
	b.sendText(chatID, formatImport(summary))
	return nil
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImportSize))
}
