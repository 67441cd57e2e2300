package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the q3stats version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(BuildVersion)
		},
	}
}
