package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the server's pipeline configuration",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := apiClient.GetConfig(context.Background())
		if err != nil {
			return fmt.Errorf("fetching server config: %w", err)
		}

		pretty, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(pretty))
		return nil
	},
}
