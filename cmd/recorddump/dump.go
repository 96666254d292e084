package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/marselester/binproto"
	"github.com/spf13/cobra"
)

var dumpFormat string

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Dump every record found in a stream",
	Long: `Dump reads a binary stream (a file, or stdin if no file is
given) framed with the NamedPoint/PointGroup schema, printing each record
(one line per record in text format, an indented JSON object per record
in json format) until the stream is exhausted. Bytes that don't match any
known discriminator are reported as raw data.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpFormat, "format", "f", "text", "output format (text, json)")
}

type recordDump struct {
	Record string         `json:"record"`
	Fields map[string]any `json:"fields,omitempty"`
	Raw    []byte         `json:"raw,omitempty"`
}

func runDump(cmd *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	rt := binproto.NewRuntime(
		binproto.WithStrict(strict),
		binproto.WithEvents(binproto.NewZerologSink()),
	)
	disp, err := binproto.NewDispatcher([]*binproto.RecordDescriptor{
		namedPointDescriptor,
		pointGroupDescriptor,
	})
	if err != nil {
		return fmt.Errorf("failed to build dispatcher: %w", err)
	}

	enc := json.NewEncoder(output)
	enc.SetIndent("", "  ")

	for {
		result, err := disp.Read(r, rt)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("dispatch failed: %w", err)
		}

		switch {
		case result.Record != nil:
			if err := printRecord(enc, result.Record); err != nil {
				return err
			}
		case result.Raw != nil:
			if err := printRaw(enc, result.Raw); err != nil {
				return err
			}
		}
	}
}

func printRecord(enc *json.Encoder, rv *binproto.RecordValue) error {
	d := recordDump{Record: rv.Descriptor().Name(), Fields: rv.Fields()}
	if dumpFormat == "json" {
		return enc.Encode(d)
	}
	fmt.Fprintf(output, "%s %v\n", d.Record, d.Fields)
	return nil
}

func printRaw(enc *json.Encoder, raw []byte) error {
	d := recordDump{Record: "raw", Raw: raw}
	if dumpFormat == "json" {
		return enc.Encode(d)
	}
	fmt.Fprintf(output, "raw % x\n", raw)
	return nil
}
