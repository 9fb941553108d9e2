package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sceneforge/sceneforge/pkg/api/v1/client"
	"github.com/sceneforge/sceneforge/pkg/api/v1/routes"
)

// flag names
const (
	flagServerAddress = "server-address"
)

// environment variable names
const (
	envServerAddress = "SCENEFORGE_SERVER_ADDRESS"
)

var (
	// apiClient is the shared API client instance
	apiClient client.Client
	// serverAddress holds the target API server address. Flag parsing sets this.
	serverAddress string
)

// initClient initializes the API client
func initClient() error {
	var err error
	opts := client.DefaultOptions()
	opts.BaseURL = serverAddress

	apiClient, err = client.NewClient(opts)
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", routes.DefaultBaseURL,
		"Address of the sceneforge API server (env: SCENEFORGE_SERVER_ADDRESS)")

	RootCmd.AddCommand(convertCmd)
	RootCmd.AddCommand(jobsCmd)
	RootCmd.AddCommand(configCmd)
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "sceneforge",
	Short: "sceneforge CLI - submit floorplans and track conversion jobs",
	Long: `sceneforge CLI is a command line tool for submitting floorplan images to the
sceneforge API and tracking the resulting 3D scene conversion jobs.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Flag > env var > default
		if !cmd.Flags().Changed(flagServerAddress) {
			if envAddr := os.Getenv(envServerAddress); envAddr != "" {
				serverAddress = envAddr
			}
		}

		if serverAddress == "" {
			return fmt.Errorf("server address cannot be empty")
		}
		return initClient()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
