package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/persistence"
)

// gameCmd is the parent for game directory management.
var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Manage tracked games",
	Long: `The game command manages the per-game directories: each tracked game
holds an append-only event log (log.jsonl) and a data overlay for custom
missions, secondaries, and datasheets.

Use 'create' to start a new game, 'load' to inspect one, and 'list' to see
what is tracked.`,
}

var gameListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked games",
	Run: func(cmd *cobra.Command, args []string) {
		manager := persistence.NewGameManager(viper.GetString("games_dir"))
		names, err := manager.List()
		if err != nil {
			fmt.Printf("Error listing games: %v\n", err)
			os.Exit(1)
		}
		if len(names) == 0 {
			fmt.Println("No games tracked yet. Start one with 'warscribe game create <name>'.")
			return
		}
		for _, n := range names {
			fmt.Println(n)
		}
	},
}

func init() {
	rootCmd.AddCommand(gameCmd)
	gameCmd.AddCommand(gameListCmd)
}
