package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/persistence"
)

var (
	tgChatID    string
	tgUserPairs []string
)

// TelegramGameConfig maps a group chat onto one tracked game.
type TelegramGameConfig struct {
	ChatID string            `yaml:"chat_id"`
	Users  map[string]string `yaml:"users"` // telegram user_id -> attacker|defender
}

var telegramCmd = &cobra.Command{
	Use:   "telegram [game_name]",
	Short: "Configure Telegram settings for a game",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		manager := persistence.NewGameManager(viper.GetString("games_dir"))
		gamePath := manager.GamePath(name)
		if _, err := os.Stat(gamePath); os.IsNotExist(err) {
			fmt.Printf("Error: game directory %s does not exist. Run 'game create' first.\n", gamePath)
			os.Exit(1)
		}

		configPath := filepath.Join(gamePath, "telegram.yaml")
		config := TelegramGameConfig{
			Users: make(map[string]string),
		}

		// Load existing config if it exists
		if _, err := os.Stat(configPath); err == nil {
			f, _ := os.Open(configPath)
			yaml.NewDecoder(f).Decode(&config)
			f.Close()
		}

		if tgChatID == "" {
			fmt.Println("---")
			fmt.Println("How to get your Telegram Chat ID:")
			fmt.Println("1. Add your bot to the group.")
			fmt.Println("2. Send a message in the group (e.g., /start).")
			fmt.Println("3. Access https://api.telegram.org/bot<TOKEN>/getUpdates in your browser.")
			fmt.Println("4. Look for the 'chat' object and its 'id' field (it usually starts with a minus sign).")
			fmt.Println("---")
			fmt.Print("chat_id: ")
			scanner := bufio.NewScanner(os.Stdin)
			if scanner.Scan() {
				tgChatID = strings.TrimSpace(scanner.Text())
			}
		}

		if tgChatID != "" {
			config.ChatID = tgChatID
		}
		for _, pair := range tgUserPairs {
			parts := strings.Split(pair, ":")
			if len(parts) != 2 {
				fmt.Printf("Warning: invalid user pair format %q. Expected 'user_id:player'\n", pair)
				continue
			}
			userID := parts[0]
			if _, err := game.ParsePlayer(parts[1]); err != nil {
				fmt.Printf("Warning: %v\n", err)
				continue
			}
			config.Users[userID] = parts[1]
		}

		f, err := os.Create(configPath)
		if err != nil {
			fmt.Printf("Error creating config file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		encoder := yaml.NewEncoder(f)
		if err := encoder.Encode(config); err != nil {
			fmt.Printf("Error encoding config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Telegram game configuration saved to %s\n", configPath)
	},
}

func init() {
	gameCmd.AddCommand(telegramCmd)
	telegramCmd.Flags().StringVarP(&tgChatID, "chat_id", "c", "", "Telegram group chat ID")
	telegramCmd.Flags().StringSliceVarP(&tgUserPairs, "user", "u", []string{}, "Map Telegram user_id to a side (format: user_id:attacker)")
}
