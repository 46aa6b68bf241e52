package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/persistence"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/session"
)

// loadCmd represents the game load command
var loadCmd = &cobra.Command{
	Use:   "load [game_name]",
	Short: "Load a game and print its current state",
	Long: `Replays the event log of a tracked game through the projector and prints
the resulting state: round, phase, scores, and the CP ledger reconciliation.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		manager := persistence.NewGameManager(viper.GetString("games_dir"))
		logPath, err := manager.Load(args[0])
		if err != nil {
			fmt.Printf("Error finding game: %v\n", err)
			os.Exit(1)
		}

		store, err := session.NewFileStore(logPath)
		if err != nil {
			fmt.Printf("Error opening event log: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		events, err := store.Load()
		if err != nil {
			fmt.Printf("Error reading event log: %v\n", err)
			os.Exit(1)
		}

		projector := game.NewProjector()
		state, err := projector.Build(events)
		if err != nil {
			fmt.Printf("Error building state: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Loaded game %q: %d events.\n\n", args[0], len(events))
		fmt.Printf("Round %d, %s phase, %s turn (%s went first)\n",
			state.Round, state.Phase, state.PlayerTurn, state.FirstPlayer)
		if state.Mission != "" {
			fmt.Printf("Mission: %s\n", state.Mission)
		}
		for _, p := range []game.Player{game.Attacker, game.Defender} {
			ps := state.State(p)
			fmt.Printf("\n%s: %dCP, %dVP (%s missions)\n", p, ps.CP, ps.VP, ps.MissionMode)
			if state.LedgerBalance(p) != ps.CP {
				fmt.Printf("  WARNING: CP ledger does not reconcile (ledger says %d)\n", state.LedgerBalance(p))
			}
			for _, name := range ps.ActiveSecondaries {
				scored := 0
				if prog, ok := ps.Secondaries[name]; ok {
					scored = prog.VPScored
				}
				fmt.Printf("  secondary: %s (%dVP)\n", name, scored)
			}
			alive := 0
			for _, u := range ps.Units {
				if !u.Destroyed {
					alive++
				}
			}
			fmt.Printf("  units: %d alive of %d\n", alive, len(ps.Units))
		}
		if state.Complete {
			fmt.Println("\nGame is complete.")
		}
	},
}

func init() {
	gameCmd.AddCommand(loadCmd)
}
