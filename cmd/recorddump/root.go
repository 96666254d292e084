package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	outputFile string
	output     io.Writer
	strict     bool
)

var rootCmd = &cobra.Command{
	Use:   "recorddump",
	Short: "Frame-parse a binproto byte stream and print its records",
	Long: `recorddump reads a binary stream framed with the built-in
NamedPoint/PointGroup schema and prints each decoded record (one line
per record in text format, an indented JSON object per record in json
format) until the stream is exhausted.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			output = f
		} else {
			output = os.Stdout
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if f, ok := output.(*os.File); ok && f != os.Stdout {
			f.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "write output to file instead of stdout")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "promote warnings to errors")

	rootCmd.AddCommand(dumpCmd)
}
