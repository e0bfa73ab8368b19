/*
Copyright © 2025 nishcheyk
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/nishcheyk/infinity-workspace/config"
	"github.com/nishcheyk/infinity-workspace/database"
)

// resetIndexCmd drops and recreates the vector collection. Every
// indexed chunk is lost; documents must be re-ingested afterwards.
var resetIndexCmd = &cobra.Command{
	Use:   "reset-index",
	Short: "Drop and recreate the vector collection",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		store, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig, cfg.EmbeddingConfig.Dimension)
		if err != nil {
			fmt.Println("Failed to create Weaviate client: ", err)
			os.Exit(1)
		}

		if err := store.ReInit(context.Background()); err != nil {
			fmt.Println("Failed to reset vector collection: ", err)
			os.Exit(1)
		}
		fmt.Println("Vector collection recreated")
	},
}

func init() {
	rootCmd.AddCommand(resetIndexCmd)
	resetIndexCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
}
