package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Serdar715/sinkprobe/internal/payloads"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newPayloadsCmd(out io.Writer) *cobra.Command {
	var (
		variants   bool
		seed       int64
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "payloads",
		Short: "Print the built-in alert payload list",
		Long: `Prints the built-in payload list, one payload per line, in the format
accepted by --payloads. Every payload calls alert().`,
		Example: `  sinkprobe payloads > payloads.txt
  sinkprobe payloads --variants -o payloads.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := payloads.NewGenerator(variants, seed).Payloads()
			data := strings.Join(list, "\n") + "\n"

			if outputFile == "" {
				_, err := io.WriteString(out, data)
				return err
			}
			if err := os.WriteFile(outputFile, []byte(data), 0644); err != nil {
				return fmt.Errorf("failed to write payloads: %w", err)
			}
			color.Green("[✓] %d payloads written to %s", len(list), outputFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&variants, "variants", false, "Append encoded and obfuscated variants")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Seed for obfuscated variants")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the list to a file instead of stdout")
	return cmd
}
