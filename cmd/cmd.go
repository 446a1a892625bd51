package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/teandr/crawler/cmd/run"
)

// 以下变量在构建时通过-ldflags注入
var (
	BuildTS   = "None"
	GitHash   = "None"
	GitBranch = "None"
	Version   = "None"
)

func GetVersion() string {
	if GitHash != "" {
		h := GitHash
		if len(h) > 7 {
			h = h[:7]
		}

		return fmt.Sprintf("%s-%s", Version, h)
	}

	return Version
}

func Printer() {
	fmt.Println("Version:         ", GetVersion())
	fmt.Println("Git Branch:      ", GitBranch)
	fmt.Println("Git Hash:        ", GitHash)
	fmt.Println("Build Time (UTC):", BuildTS)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version",
	Long:  "print version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		Printer()
	},
}

func Execute() error {
	var rootCmd = &cobra.Command{Use: "crawler"}
	rootCmd.AddCommand(run.RunCmd, versionCmd)
	return rootCmd.Execute()
}
