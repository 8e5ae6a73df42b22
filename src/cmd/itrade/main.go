package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SmooSenseAI/itrade/src/utils"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "itrade",
	Short: "Local gateway between a web frontend and the E*Trade API",
	RunE: func(cmd *cobra.Command, args []string) error {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "itrade %s\n", version)
			return nil
		}

		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "itrade %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "itrade.yaml", "Path to the YAML config file.")
	rootCmd.PersistentFlags().String("env-dir", ".", "Directory holding .env.development / .env.production.")
	rootCmd.PersistentFlags().String("go-env", utils.GetEnvOrDefault("GO_ENV", "development"), "The go environment to run the command in.")
	rootCmd.Flags().Bool("version", false, "Show version and exit.")

	addServeFlags(rootCmd)
	addServeFlags(serveCmd)

	positionsCmd.Flags().String("account", "", "The accountIdKey to list positions for.")
	positionsCmd.Flags().String("format", "table", "Output format: table or csv.")
	positionsCmd.MarkFlagRequired("account")

	rootCmd.AddCommand(serveCmd, versionCmd, logoutCmd, positionsCmd, accountsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
