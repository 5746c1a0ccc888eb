package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sightread",
	Short: "Sight-reading exercise generator and scorer",
	Long:  `Generates short sight-reading exercises and scores live or recorded performances of them.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
