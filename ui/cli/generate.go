// Copyright (c) 2026 ToeiRei
// Agekey - age-keygen front-end
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/agekey/internal/keygen"
	"github.com/toeirei/agekey/internal/tui"
)

// newGenerateCmd returns the headless `generate` subcommand: one generation
// attempt, no TUI. The output mirrors age-keygen's own format so the result
// can be piped or redirected the same way.
func newGenerateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new age key pair and print it",
		Long: `Generate a new age key pair by running the external age-keygen tool.
The public key is printed as a comment line; the private key follows on its
own line, or is written to a file (mode 0600) when --output is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveKeygenPath()
			if err != nil {
				return err
			}

			pair, err := newRunner(path).Generate(cmd.Context())
			if err != nil {
				var genErr *keygen.GenError
				if errors.As(err, &genErr) {
					return errors.New(genErr.Message())
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# public key: %s\n", pair.Public)
			if output == "" {
				fmt.Fprintf(out, "%s\n", pair.Private)
				return nil
			}

			if err := tui.WritePrivateKeyFile(output, []byte(pair.Private)); err != nil {
				return fmt.Errorf("failed to write private key: %w", err)
			}
			fmt.Fprintf(out, "# private key saved to: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the private key to this file instead of stdout")

	return cmd
}
