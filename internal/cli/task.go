package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewTaskCmd создаёт группу команд для управления tasks.
func NewTaskCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage worker tasks",
	}

	cmd.AddCommand(
		newTaskListCmd(clientFn, outputFn),
		newTaskShowCmd(clientFn, outputFn),
		newTaskSubmitCmd(clientFn, outputFn),
	)

	return cmd
}

func newTaskListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			tasks, err := client.ListTasks()
			if err != nil {
				return err
			}

			headers := []string{"TASK_ID", "TYPE", "STATUS", "QUEUED", "ERROR"}
			rows := make([][]string, len(tasks))
			for i, t := range tasks {
				rows[i] = []string{t.ID, t.Type, t.Status, t.QueuedAt, t.Error}
			}

			out.Print(headers, rows, tasks)
			return nil
		},
	}
}

func newTaskShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			task, err := client.GetTask(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"TASK_ID", "TYPE", "STATUS", "STARTED", "FINISHED", "ERROR"},
				[][]string{{task.ID, task.Type, task.Status, task.StartedAt, task.FinishedAt, task.Error}},
				task,
			)
			return nil
		},
	}
}

func newTaskSubmitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var taskID string
	var taskType string
	var params []string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a task to the worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			body := make(map[string]any)
			if taskID != "" {
				body["task_id"] = taskID
			}
			if taskType != "" {
				body["type"] = taskType
			}
			for _, kv := range params {
				parts := strings.SplitN(kv, "=", 2)
				if len(parts) != 2 {
					return fmt.Errorf("invalid param format %q, expected KEY=VALUE", kv)
				}
				// Числовые значения отправляются числами
				if n, err := strconv.Atoi(parts[1]); err == nil {
					body[parts[0]] = n
				} else {
					body[parts[0]] = parts[1]
				}
			}

			accepted, err := client.SubmitTask(body)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Task accepted: %s", accepted.TaskID))
			out.Print(
				[]string{"TASK_ID", "STATUS"},
				[][]string{{accepted.TaskID, accepted.Status}},
				accepted,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&taskID, "id", "", "Task ID (generated by the worker if not set)")
	cmd.Flags().StringVar(&taskType, "type", "", "Task type (default: scrape)")
	cmd.Flags().StringSliceVar(&params, "param", nil, "Task parameters as KEY=VALUE (repeatable)")

	return cmd
}
