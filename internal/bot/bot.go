package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"todo-planner/internal/model"
	"todo-planner/internal/planner"
	"todo-planner/internal/service"
)

const cbCompletePrefix = "complete:"

// sender is the part of the Telegram API the bot writes through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot answers commands in linked chats and delivers daily digests.
type Bot struct {
	client    *tgbotapi.BotAPI
	api       sender
	users     service.UserRepository
	todos     *service.TodoService
	reminders *service.ReminderService
	log       *zap.Logger
	loc       *time.Location
	clock     func() time.Time
}

func New(token string, users service.UserRepository, todos *service.TodoService, reminders *service.ReminderService, loc *time.Location, log *zap.Logger) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Info("bot authorized", zap.String("account", client.Self.UserName))

	b := newBot(client, users, todos, reminders, loc, log)
	b.client = client
	return b, nil
}

func newBot(api sender, users service.UserRepository, todos *service.TodoService, reminders *service.ReminderService, loc *time.Location, log *zap.Logger) *Bot {
	return &Bot{
		api:       api,
		users:     users,
		todos:     todos,
		reminders: reminders,
		log:       log,
		loc:       loc,
		clock:     time.Now,
	}
}

func (b *Bot) now() time.Time {
	return b.clock().In(b.loc)
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return errors.New("bot has no telegram client")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.client.StopReceivingUpdates()
	}()

	for update := range updates {
		if err := b.handleUpdate(ctx, update); err != nil {
			b.log.Warn("handle update", zap.Int("update_id", update.UpdateID), zap.Error(err))
		}
	}
	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		msg := update.Message
		if msg.Chat == nil || !msg.Chat.IsPrivate() || msg.From == nil {
			return nil
		}
		if !msg.IsCommand() {
			return b.sendText(msg.Chat.ID, "I only understand commands. Try /help.")
		}
		b.log.Debug("command", zap.Int64("chat_id", msg.Chat.ID), zap.String("command", msg.Command()))
		return b.handleCommand(ctx, msg)
	}
	return nil
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "today":
		return b.handleView(ctx, msg, planner.FilterToday)
	case "overdue":
		return b.handleView(ctx, msg, planner.FilterOverdue)
	case "upcoming":
		return b.handleView(ctx, msg, planner.FilterUpcoming)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I send your daily todo digest.</b>\n\n"+
			"Your chat id is <code>%d</code>. Save it as the Telegram chat id in your profile to link this chat.\n\n"+
			"Then try /today, /overdue or /upcoming.",
		html.EscapeString(name), msg.Chat.ID,
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /start — show this chat's id for linking\n" +
		"• /today — todos due today\n" +
		"• /overdue — todos past their due time\n" +
		"• /upcoming — todos from tomorrow on, by day\n" +
		"• /help — this message"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleView(ctx context.Context, msg *tgbotapi.Message, filter planner.Filter) error {
	user, err := b.linkedUser(ctx, msg.Chat.ID)
	if err != nil {
		return err
	}
	if user == nil {
		return b.sendNotLinked(msg.Chat.ID)
	}

	now := b.now()
	text, err := b.reminders.View(ctx, user.ID, filter, now)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Could not load your todos, try again later.")
	}
	todos, err := b.todos.List(ctx, user.ID, string(filter), now)
	if err != nil {
		return err
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ParseMode = tgbotapi.ModeHTML
	if len(todos) > 0 {
		out.ReplyMarkup = completeKeyboard(todos)
	}
	_, err = b.api.Send(out)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if !strings.HasPrefix(cb.Data, cbCompletePrefix) {
		b.ack(cb.ID, "")
		return nil
	}

	chatID := cb.Message.Chat.ID
	user, err := b.linkedUser(ctx, chatID)
	if err != nil {
		return err
	}
	if user == nil {
		b.ack(cb.ID, "")
		return b.sendNotLinked(chatID)
	}

	todoID := strings.TrimPrefix(cb.Data, cbCompletePrefix)
	todo, _, err := b.todos.Update(ctx, user.ID, todoID, service.TodoPatch{Completed: model.Some(true)}, b.now())
	if errors.Is(err, service.ErrNotFound) {
		b.ack(cb.ID, "Todo no longer exists")
		return nil
	}
	if err != nil {
		b.ack(cb.ID, "")
		return err
	}
	b.ack(cb.ID, "Done!")
	return b.sendText(chatID, fmt.Sprintf("✅ Completed: %s", html.EscapeString(todo.Title)))
}

// SendDailyDigests sends a digest to every user with a linked chat.
func (b *Bot) SendDailyDigests(ctx context.Context) error {
	users, err := b.users.ListWithTelegram(ctx)
	if err != nil {
		return err
	}
	now := b.now()
	sent := 0
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.reminders.DailyDigest(ctx, user, now)
		if err != nil {
			b.log.Error("build digest", zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		if err := b.sendText(*user.TelegramChatID, text); err != nil {
			b.log.Error("send digest", zap.String("user_id", user.ID), zap.Int64("chat_id", *user.TelegramChatID), zap.Error(err))
			continue
		}
		sent++
	}
	b.log.Info("daily digests sent", zap.Int("sent", sent), zap.Int("linked", len(users)))
	return nil
}

// linkedUser returns nil without error when no user claims the chat.
func (b *Bot) linkedUser(ctx context.Context, chatID int64) (*model.User, error) {
	user, err := b.users.FindByTelegramChatID(ctx, chatID)
	if errors.Is(err, service.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user for chat %d: %w", chatID, err)
	}
	return user, nil
}

func (b *Bot) sendNotLinked(chatID int64) error {
	return b.sendText(chatID, fmt.Sprintf("This chat is not linked yet. Save <code>%d</code> as the Telegram chat id in your profile.", chatID))
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) ack(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Warn("callback ack", zap.Error(err))
	}
}

func completeKeyboard(todos []model.Todo) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(todos))
	for _, todo := range todos {
		if todo.Completed {
			continue
		}
		label := "✅ " + shortTitle(todo.Title, 28)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbCompletePrefix+todo.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func shortTitle(title string, maxLen int) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) <= maxLen {
		return string(runes)
	}
	return string(runes[:maxLen-1]) + "…"
}
