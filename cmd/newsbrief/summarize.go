package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newSummarizeCommand() *cobra.Command {
	var genre string

	cmd := &cobra.Command{
		Use:   "summarize [file]",
		Short: "Summarize and classify one article read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			text, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read article: %w", err)
			}

			proc, err := newProcessor(cfg, false)
			if err != nil {
				return err
			}

			res, err := proc.Produce(string(text), genre)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVarP(&genre, "genre", "g", "", "Main genre of the article")
	_ = cmd.MarkFlagRequired("genre")

	return cmd
}
