package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"ai-fitness-planner/internal/config"
	"ai-fitness-planner/internal/metrics"
	"ai-fitness-planner/internal/plan"
	"ai-fitness-planner/internal/planner"
	"ai-fitness-planner/internal/profile"
	"ai-fitness-planner/internal/report"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// PlanGenerator produces a plan for a validated profile.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, prof profile.Profile) (*plan.Plan, error)
}

// UsageReporter provides the figures behind /metrics.
type UsageReporter interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// sender is the part of tgbotapi.BotAPI the bot talks through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot wraps the Telegram API and the fitness planner.
type Bot struct {
	api     sender
	planner PlanGenerator
	usage   UsageReporter
	cfg     *config.Config
	dataDir string
	logger  zerolog.Logger
	timeout time.Duration
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, gen PlanGenerator, usage UsageReporter, dataDir string, logger zerolog.Logger) (*Bot, error) {
	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info().Str("account", api.Self.UserName).Msg("authorized on telegram")

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
		}
		resp, err := api.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		logger.Info().Str("response", resp.Description).Msg("webhook set")
	}

	return newBot(api, cfg, gen, usage, dataDir, logger), nil
}

func newBot(api sender, cfg *config.Config, gen PlanGenerator, usage UsageReporter, dataDir string, logger zerolog.Logger) *Bot {
	return &Bot{
		api:     api,
		planner: gen,
		usage:   usage,
		cfg:     cfg,
		dataDir: dataDir,
		logger:  logger,
		timeout: cfg.LLMTimeout + 30*time.Second,
	}
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn().Err(err).Msg("failed to parse update")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.isAllowed(update.Message.From.ID) {
		b.logger.Warn().
			Int64("user_id", update.Message.From.ID).
			Str("username", update.Message.From.UserName).
			Msg("unauthorized access attempt")
		return
	}

	go b.processMessage(update.Message)
}

// isAllowed reports whether userID may use the bot. An empty allow-list
// admits everyone.
func (b *Bot) isAllowed(userID int64) bool {
	if len(b.cfg.TelegramAllowedUserIDs) == 0 {
		return true
	}
	return slices.Contains(b.cfg.TelegramAllowedUserIDs, userID)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.sendMarkdown(msg.Chat.ID, usageText)
	case "metrics":
		b.handleMetricsRequest(msg)
	case "plan", "":
		b.handlePlanRequest(msg)
	default:
		b.sendMarkdown(msg.Chat.ID, "🤔 Unknown command.\n\n"+usageText)
	}
}

const usageText = "🏋️ *AI Fitness Planner*\n\n" +
	"Send your details to get a 7-day diet and exercise plan:\n" +
	"`/plan age=25 gender=male weight=70 height=175 goal=lose restrictions=vegetarian`\n\n" +
	"Goals: lose, gain, maintain. Restrictions are optional."

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.ID != b.cfg.AdminTelegramID {
		b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	usage, err := b.usage.GetDailyUsage(ctx, 7)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to fetch metrics")
		b.sendMarkdown(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	b.sendMarkdown(msg.Chat.ID, formatMetrics(usage, metrics.GetSysHealth(b.dataDir)))
}

func (b *Bot) handlePlanRequest(msg *tgbotapi.Message) {
	args := msg.CommandArguments()
	if !msg.IsCommand() {
		args = msg.Text
	}

	prof, err := parseProfileArgs(args)
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, fmt.Sprintf("⚠️ %s\n\n%s", err, usageText))
		return
	}

	sent, err := b.sendMarkdown(msg.Chat.ID, "🧠 *Building your plan...*\n(This can take up to a minute)")
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	b.logger.Info().Int64("user_id", msg.From.ID).Str("profile", prof.String()).Msg("generating plan")
	p, err := b.planner.GeneratePlan(ctx, prof)
	if err != nil {
		message := planner.FailureMessage
		var genErr *planner.GenerationError
		if errors.As(err, &genErr) {
			message = genErr.Message
		}
		b.editMarkdown(msg.Chat.ID, sent.MessageID, fmt.Sprintf("❌ %s\n\nSend the same request again to retry.", message))
		return
	}

	diet, exercise, supplements := report.MarkdownParts(p)
	b.editMarkdown(msg.Chat.ID, sent.MessageID, diet)
	b.sendMarkdown(msg.Chat.ID, exercise)
	b.sendMarkdown(msg.Chat.ID, supplements)
}

func (b *Bot) sendMarkdown(chatID int64, text string) (tgbotapi.Message, error) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(m)
	if err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
	return sent, err
}

func (b *Bot) editMarkdown(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to edit message")
	}
}

func formatMetrics(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Plan Generations*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs, %d failed)\n",
			d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Failures))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Host: %.0f%% RAM, %.0f%% CPU, %.0f%% disk\n", health.HostMemPercent, health.CPUPercent, health.DiskUsedPercent))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}
