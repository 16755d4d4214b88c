package main

import (
	"fmt"
	"os"

	"github.com/dunamismax/pnmflow/internal/pnm"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pnmcopy [input] [output]",
	Short: "Copy a PGM or PPM image to a binary PPM",
	Long: `Read a PGM or PPM image and write it back as binary PPM (P6, maxval 255).
An omitted input reads stdin and an omitted output writes stdout.`,
	Args:          cobra.MaximumNArgs(2),
	RunE:          runCopy,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().Bool("gray", false, "Read as grayscale, averaging color input")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCopy(cmd *cobra.Command, args []string) error {
	gray, _ := cmd.Flags().GetBool("gray")
	input, output := argAt(args, 0), argAt(args, 1)

	if gray {
		return copyImage[pnm.Gray](input, output)
	}
	return copyImage[pnm.Rgb](input, output)
}

func copyImage[P pnm.Pixel](input, output string) error {
	img, err := pnm.Read[P](input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", displayName(input, "stdin"), err)
	}
	if err := img.Write(output); err != nil {
		return fmt.Errorf("writing %s: %w", displayName(output, "stdout"), err)
	}
	return nil
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func displayName(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}
