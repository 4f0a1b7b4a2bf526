package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"unprompted-mcp/internal/api"
	"unprompted-mcp/internal/model"

	"github.com/spf13/cobra"
)

var (
	simulateFile string
	printExample bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one calculation from a JSON request",
	Long: `Reads a request envelope {user_config, num_days, bins, calculation_type} from
stdin (or --file) and writes the JSON result to stdout. On failure the
{error, type} body is written instead and the command exits non-zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if printExample {
			return writeExample(out)
		}

		in := cmd.InOrStdin()
		if simulateFile != "" {
			f, err := os.Open(simulateFile)
			if err != nil {
				return fmt.Errorf("open request file: %w", err)
			}
			defer f.Close()
			in = f
		}

		payload, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}

		service, store := openService()
		if store != nil {
			defer store.Close()
		}

		res, runErr := service.HandleJSON(cmd.Context(), payload)
		if len(res) > 0 {
			fmt.Fprintln(out, string(res))
		}
		return runErr
	},
}

func writeExample(w io.Writer) error {
	days, bins := 1, 24
	req := api.Request{
		UserConfig:      api.RawFromConfiguration(model.DefaultConfiguration()),
		NumDays:         &days,
		Bins:            &bins,
		CalculationType: api.CalcMainSimulation,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(req)
}

func init() {
	simulateCmd.Flags().StringVarP(&simulateFile, "file", "f", "", "read the request from this file instead of stdin")
	simulateCmd.Flags().BoolVar(&printExample, "print-example", false, "print an example request with the default configuration and exit")
	rootCmd.AddCommand(simulateCmd)
}
