package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/persistence"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/session"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/telegram"
)

// maybeStartBot checks whether telegram is configured for this game and
// starts the background worker if so.
func maybeStartBot(app *session.Session, gameName string) {
	token := viper.GetString("telegram_token")
	if token == "" {
		return
	}

	manager := persistence.NewGameManager(viper.GetString("games_dir"))
	configPath := filepath.Join(manager.GamePath(gameName), "telegram.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return
	}

	f, err := os.Open(configPath)
	if err != nil {
		return
	}
	defer f.Close()

	var config TelegramGameConfig
	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return
	}

	if config.ChatID == "" {
		return
	}

	chatID, err := strconv.ParseInt(config.ChatID, 10, 64)
	if err != nil {
		return
	}

	userMap := make(map[int64]string)
	for idStr, player := range config.Users {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err == nil {
			userMap[id] = player
		}
	}

	bot := telegram.NewBot(token, chatID, userMap, app, getLogger())

	go bot.Start(context.Background())
	fmt.Printf("[Telegram] Bot active for chat %d\n", chatID)
}
