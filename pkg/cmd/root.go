// Package cmd implements midenc's cobra command tree: the `compile`
// subcommand plus the shared session/diagnostic plumbing every subcommand
// drives. Grounded on the teacher's pkg/cmd/root.go and pkg/cmd/zkc/root.go
// (both define the same rootCmd/Execute/Version shape for a cobra-based
// compiler driver).
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Exit codes, named per the CLI's documented contract: 0 success, 1
// compilation error, 2 CLI misuse.
const (
	exitSuccess   = 0
	exitCompile   = 1
	exitCliMisuse = 2
)

// Version is filled when building with make, but *not* when installing via
// "go install".
var Version string

var rootCmd = &cobra.Command{
	Use:   "midenc",
	Short: "A compiler targeting Miden Assembly.",
	Long:  "A compiler (and general toolbox) translating WebAssembly and HIR into Miden Assembly.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("midenc ")
			if Version != "" {
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Printf("%s", info.Main.Version)
			} else {
				fmt.Printf("(unknown version)")
			}
			fmt.Println()
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCliMisuse)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "print version information and exit")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}
