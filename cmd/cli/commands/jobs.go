package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	jobsCmd.AddCommand(getJobCmd)
	jobsCmd.AddCommand(downloadJobCmd)

	getJobCmd.Flags().StringP("id", "i", "", "Job ID to fetch")
	getJobCmd.Flags().BoolP("watch", "w", false, "Poll the job until it reaches a terminal state")
	getJobCmd.Flags().Duration("interval", 2*time.Second, "Polling interval used with --watch")
	_ = getJobCmd.MarkFlagRequired("id")

	downloadJobCmd.Flags().StringP("id", "i", "", "Job ID to download artifacts for")
	downloadJobCmd.Flags().String("scene", "", "Destination path for the scene mesh")
	downloadJobCmd.Flags().String("walkthrough", "", "Destination path for the walkthrough video")
	_ = downloadJobCmd.MarkFlagRequired("id")
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect conversion jobs",
}

var getJobCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a job's status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString("id")
		watch, _ := cmd.Flags().GetBool("watch")
		interval, _ := cmd.Flags().GetDuration("interval")

		if watch {
			return watchJob(jobID, interval)
		}

		job, err := apiClient.GetJob(context.Background(), jobID)
		if err != nil {
			return fmt.Errorf("fetching job %s: %w", jobID, err)
		}

		pretty, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(pretty))
		return nil
	},
}

var downloadJobCmd = &cobra.Command{
	Use:   "download",
	Short: "Download a completed job's artifacts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString("id")
		scenePath, _ := cmd.Flags().GetString("scene")
		walkthroughPath, _ := cmd.Flags().GetString("walkthrough")

		if scenePath == "" && walkthroughPath == "" {
			return fmt.Errorf("at least one of --scene or --walkthrough is required")
		}

		ctx := context.Background()
		if scenePath != "" {
			if err := apiClient.DownloadScene(ctx, jobID, scenePath); err != nil {
				return fmt.Errorf("downloading scene: %w", err)
			}
			fmt.Printf("Scene saved to %s\n", scenePath)
		}
		if walkthroughPath != "" {
			if err := apiClient.DownloadWalkthrough(ctx, jobID, walkthroughPath); err != nil {
				return fmt.Errorf("downloading walkthrough: %w", err)
			}
			fmt.Printf("Walkthrough saved to %s\n", walkthroughPath)
		}
		return nil
	},
}
