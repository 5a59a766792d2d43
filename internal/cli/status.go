package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewStatusCmd создаёт команду состояния воркера.
func NewStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show worker status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			status, err := client.Status()
			if err != nil {
				return err
			}

			registered := "no"
			if status.Registered {
				registered = "yes"
			}

			out.Print(
				[]string{"WORKER_ID", "COORDINATOR_ID", "REGISTERED", "ACTIVE", "TOTAL", "MAX"},
				[][]string{{
					status.WorkerID,
					status.CoordinatorID,
					registered,
					strconv.Itoa(status.ActiveTasks),
					strconv.Itoa(status.TotalTasks),
					strconv.Itoa(status.MaxTasks),
				}},
				status,
			)
			return nil
		},
	}
}
