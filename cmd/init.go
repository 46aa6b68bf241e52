package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/datasheets"
)

var defaultFactions = []string{
	"space-marines", "chaos-space-marines", "necrons", "orks", "aeldari",
	"tyranids", "astra-militarum", "adeptus-mechanicus", "tau-empire",
	"world-eaters", "death-guard", "thousand-sons", "drukhari",
	"genestealer-cults", "leagues-of-votann", "imperial-knights",
	"chaos-knights", "grey-knights", "adepta-sororitas", "adeptus-custodes",
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap local datasheet reference data",
	Long: `Bootstraps the local datasheet library by fetching faction datasheets
from the public API, converting them to the YAML overlay format, and storing
them locally for offline use.`,
	Run: func(cmd *cobra.Command, args []string) {
		dataDir, _ := cmd.Flags().GetString("data_dir_local")
		if dataDir == "" {
			dataDir = viper.GetString("data_dir")
		}
		if dataDir == "" {
			rootDir, _ := os.Getwd()
			dataDir = filepath.Join(rootDir, "data")
		}

		force, _ := cmd.Flags().GetBool("force")
		baseURL, _ := cmd.Flags().GetString("api_base")

		// Which factions to bootstrap: named flags win, otherwise all.
		var targets []string
		for _, faction := range defaultFactions {
			if selected, _ := cmd.Flags().GetBool(faction); selected {
				targets = append(targets, faction)
			}
		}
		if len(targets) == 0 {
			targets = defaultFactions
		}

		fmt.Printf("Bootstrapping datasheets to: %s\n", dataDir)

		client := datasheets.NewClient(baseURL, dataDir, force)
		ctx := context.Background()

		totalBar := progressbar.Default(int64(len(targets)), "Overall Progress")

		for _, faction := range targets {
			fmt.Printf("\nFetching %s...\n", faction)

			list, err := client.FetchList(ctx, faction)
			if err != nil {
				fmt.Printf("Error fetching %s index: %v\n", faction, err)
				totalBar.Add(1)
				continue
			}

			if list.Count == 0 {
				totalBar.Add(1)
				continue
			}

			factionBar := progressbar.Default(int64(list.Count), fmt.Sprintf("Downloading %s", faction))
			_, err = client.Bootstrap(ctx, faction, func(string) {
				factionBar.Add(1)
			})
			if err != nil {
				fmt.Printf("\nError bootstrapping %s: %v\n", faction, err)
			}
			totalBar.Add(1)
		}

		fmt.Println("\nDatasheet bootstrap complete!")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Force redownload of existing files")
	initCmd.Flags().String("data_dir_local", "", "Local data directory to save files to")
	initCmd.Flags().String("api_base", "", "Override the datasheet API base URL")

	for _, faction := range defaultFactions {
		initCmd.Flags().Bool(faction, false, fmt.Sprintf("Download %s", faction))
	}
}
