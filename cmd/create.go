package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/persistence"
)

// createCmd represents the game create command
var createCmd = &cobra.Command{
	Use:   "create [game_name]",
	Short: "Create a new tracked game",
	Long: `Bootstraps a fresh append-only event log (log.jsonl) and a data overlay
directory under <games_dir>/<game_name> to track one match.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		manager := persistence.NewGameManager(viper.GetString("games_dir"))
		logPath, err := manager.Create(args[0])
		if err != nil {
			fmt.Printf("Error creating game: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Created game %q.\n", args[0])
		fmt.Printf("Event log: %s\n", logPath)
		fmt.Printf("Start tracking with: warscribe repl %s\n", args[0])
	},
}

func init() {
	gameCmd.AddCommand(createCmd)
}
