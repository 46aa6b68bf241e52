package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/intent"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/persistence"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/session"
)

var noLLM bool

var replCmd = &cobra.Command{
	Use:   "repl [game_name]",
	Short: "Start the interactive tracking shell",
	Long: `Starts the interactive shell for one tracked game. Free-form text goes
through the full utterance pipeline (classification, context tiers, tool
extraction); structured commands with key: value arguments dispatch directly.

	> gain cp player: attacker amount: 1
	> marcus just scored engage on all fronts for 2

With --no-llm only structured commands are accepted.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := buildSession(args[0])
		if err != nil {
			fmt.Printf("Failed to bootstrap game session: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		maybeStartBot(app, args[0])

		if err := RunTUI(app, args[0], noLLM); err != nil {
			fmt.Printf("Fatal TUI error: %v\n", err)
			os.Exit(1)
		}
	},
}

// buildSession assembles the full pipeline for a tracked game. The Gemini
// provider and caller are wired only when a key is configured and --no-llm
// is not set; without them classification fails open and only structured
// commands mutate state.
func buildSession(name string) (*session.Session, error) {
	manager := persistence.NewGameManager(viper.GetString("games_dir"))
	logPath, err := manager.Load(name)
	if err != nil {
		return nil, fmt.Errorf("%w (create it with 'warscribe game create %s')", err, name)
	}

	store, err := session.NewFileStore(logPath)
	if err != nil {
		return nil, err
	}

	log := getLogger()
	cfg := session.Config{
		ID:       name,
		DataDirs: []string{manager.DataPath(name), viper.GetString("data_dir")},
		Store:    store,
		Log:      log,
	}

	apiKey := viper.GetString("gemini_api_key")
	if !noLLM && apiKey != "" {
		ctx := context.Background()
		model := viper.GetString("gemini_model")

		provider, err := intent.NewGeminiProvider(ctx, apiKey, model, log)
		if err != nil {
			store.Close()
			return nil, err
		}
		cfg.Provider = provider

		caller, err := session.NewGeminiCaller(ctx, apiKey, model, log)
		if err != nil {
			store.Close()
			return nil, err
		}
		cfg.Caller = caller
	}

	app, err := session.NewSession(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return app, nil
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().BoolVar(&noLLM, "no-llm", false, "disable model calls; structured commands only")
	replCmd.Flags().String("data_dir", "", "extra reference data directory (missions, secondaries, datasheets)")
	_ = viper.BindPFlag("data_dir", replCmd.Flags().Lookup("data_dir"))
}
