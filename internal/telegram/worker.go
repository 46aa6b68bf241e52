package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/session"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/toolcall"
)

// Handler is the slice of the session the bot needs: free-text utterances
// through the full pipeline, and direct tool calls for slash commands.
type Handler interface {
	HandleUtterance(ctx context.Context, text string) (*session.Reply, error)
	Execute(call toolcall.ToolCall) *session.Reply
}

// Bot bridges a Telegram group chat and one tracked game. Plain messages
// from registered users are utterances; slash commands map to direct tool
// calls.
type Bot struct {
	client       *Client
	handler      Handler
	chatID       int64
	userMap      map[int64]string // telegram user id -> "attacker" or "defender"
	lastUpdateID int
	log          *zap.Logger
}

// NewBot initializes a bot bound to one chat.
func NewBot(token string, chatID int64, userMap map[int64]string, handler Handler, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		client:       NewClient(token),
		handler:      handler,
		chatID:       chatID,
		userMap:      userMap,
		lastUpdateID: viper.GetInt("tg_last_update_id"),
		log:          log,
	}
}

// Start launches the long-polling loop. It returns when the context is
// cancelled.
func (b *Bot) Start(ctx context.Context) {
	b.log.Info("telegram bot started", zap.Int64("chat_id", b.chatID))
	for {
		if ctx.Err() != nil {
			return
		}

		updates, err := b.client.GetUpdates(ctx, b.lastUpdateID+1, 25)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.log.Warn("failed to fetch telegram updates", zap.Error(err))
			time.Sleep(5 * time.Second)
			continue
		}

		for _, update := range updates {
			if update.UpdateID > b.lastUpdateID {
				b.lastUpdateID = update.UpdateID
				viper.Set("tg_last_update_id", b.lastUpdateID)
				_ = viper.WriteConfig() // no config file yet is fine
			}

			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	if msg.Chat.ID != b.chatID {
		return
	}

	player, registered := b.userMap[msg.From.ID]
	if !registered {
		b.send(ctx, fmt.Sprintf("%s (%d) is not registered as a player in this game.", msg.From.FirstName, msg.From.ID))
		return
	}

	if strings.HasPrefix(msg.Text, "/") {
		b.handleSlashCommand(ctx, player, strings.TrimPrefix(msg.Text, "/"))
		return
	}

	reply, err := b.handler.HandleUtterance(ctx, msg.Text)
	if err != nil {
		b.send(ctx, fmt.Sprintf("Error: %v", err))
		return
	}
	b.sendReply(ctx, reply)
}

// handleSlashCommand maps a few crisp chat commands to direct tool calls,
// filling the sender's side where the tool wants a player.
func (b *Bot) handleSlashCommand(ctx context.Context, player, text string) {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return
	}

	var call toolcall.ToolCall
	switch parts[0] {
	case "state":
		call = toolcall.ToolCall{Name: "query_state", Args: map[string]any{}}
	case "next":
		call = toolcall.ToolCall{Name: "next_turn", Args: map[string]any{}}
	case "phase":
		if len(parts) < 2 {
			b.send(ctx, "Usage: /phase <command|movement|shooting|charge|fight>")
			return
		}
		call = toolcall.ToolCall{Name: "update_phase", Args: map[string]any{"phase": parts[1]}}
	default:
		// Anything else routes through the pipeline as an utterance with the
		// sender's side prefixed for attribution.
		reply, err := b.handler.HandleUtterance(ctx, fmt.Sprintf("[%s] %s", player, text))
		if err != nil {
			b.send(ctx, fmt.Sprintf("Error: %v", err))
			return
		}
		b.sendReply(ctx, reply)
		return
	}

	b.sendReply(ctx, b.handler.Execute(call))
}

func (b *Bot) sendReply(ctx context.Context, reply *session.Reply) {
	if reply == nil || reply.Ignored {
		return
	}
	for _, m := range reply.Messages {
		b.send(ctx, fmt.Sprintf("*%s*", m))
	}
	for _, w := range reply.Warnings {
		b.send(ctx, fmt.Sprintf("_%s_", w))
	}
	for _, r := range reply.Rejections {
		b.send(ctx, fmt.Sprintf("rejected: %s", r))
	}
}

func (b *Bot) send(ctx context.Context, text string) {
	if err := b.client.SendMessage(ctx, b.chatID, text); err != nil {
		b.log.Warn("failed to send telegram message", zap.Error(err))
	}
}
