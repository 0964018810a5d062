package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/msto63/cstkit/pkg/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cstkit v%s\n", version.Toolkit)
		fmt.Printf("  Grammar:    %s\n", version.ComponentVersion("grammar"))
		fmt.Printf("  API:        %s\n", version.APIVersion)
		fmt.Printf("  Git Commit: %s\n", version.GitCommit)
		fmt.Printf("  Build Date: %s\n", version.BuildDate)
		fmt.Printf("  Go Version: %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
