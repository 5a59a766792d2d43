// Drone CLI — инструмент командной строки для наблюдения за воркером
// и отправки tasks через его HTTP API.
//
// Использование:
//
//	drone [--worker-url URL] [--json] <command> [flags]
//
// Команды:
//
//	status  Состояние воркера
//	task    Управление tasks
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Drone/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var workerURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "drone",
		Short:         "Drone CLI — disposable worker tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&workerURL, "worker-url", "http://localhost:8081", "Worker URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(workerURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewStatusCmd(clientFn, outputFn),
		cli.NewTaskCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
