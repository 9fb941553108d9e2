package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	convertCmd.Flags().StringP("annotation", "a", "", "Path to an R2V annotation file (required for the full pipeline)")
	convertCmd.Flags().BoolP("wait", "w", false, "Poll the job until it reaches a terminal state")
	convertCmd.Flags().Duration("interval", 2*time.Second, "Polling interval used with --wait")
}

var convertCmd = &cobra.Command{
	Use:   "convert [floorplan image]",
	Short: "Submit a floorplan image for 3D scene conversion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		annotation, _ := cmd.Flags().GetString("annotation")
		wait, _ := cmd.Flags().GetBool("wait")
		interval, _ := cmd.Flags().GetDuration("interval")

		created, err := apiClient.CreateConversion(context.Background(), args[0], annotation)
		if err != nil {
			return fmt.Errorf("submitting conversion: %w", err)
		}

		fmt.Printf("Job %s created (status: %s)\n", created.JobID, created.Status)

		if !wait {
			return nil
		}
		return watchJob(created.JobID, interval)
	},
}

// watchJob polls the job until it is done or failed, printing stage changes
func watchJob(jobID string, interval time.Duration) error {
	lastStage := ""
	for {
		job, err := apiClient.GetJob(context.Background(), jobID)
		if err != nil {
			return fmt.Errorf("fetching job %s: %w", jobID, err)
		}

		if job.CurrentStage != "" && job.CurrentStage != lastStage {
			fmt.Printf("  stage: %s\n", job.CurrentStage)
			lastStage = job.CurrentStage
		}

		if job.Status.Terminal() {
			pretty, err := json.MarshalIndent(job, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(pretty))
			return nil
		}

		time.Sleep(interval)
	}
}
