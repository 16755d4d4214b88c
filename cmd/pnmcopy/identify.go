package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dunamismax/pnmflow/internal/pnm"
	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify [file]",
	Short: "Print the PNM header of an image",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	h, err := pnm.ParseHeader(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	printHeader(cmd.OutOrStdout(), path, len(data), h)
	return nil
}

func printHeader(w io.Writer, path string, size int, h pnm.Header) {
	encoding := "binary"
	if h.Plain {
		encoding = "plain"
	}
	fmt.Fprintf(w, "File:       %s\n", path)
	fmt.Fprintf(w, "Format:     %s (%s %s)\n", h.Magic, encoding, h.Kind)
	fmt.Fprintf(w, "Dimensions: %d x %d\n", h.Width, h.Height)
	fmt.Fprintf(w, "Channels:   %d\n", h.Kind.Channels())
	fmt.Fprintf(w, "Max value:  %d\n", h.MaxValue)
	fmt.Fprintf(w, "File size:  %d bytes\n", size)
}
