package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile string
	debug   bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kwradar",
		Short:         "Rank and classify Keyword Planner exports for ads and SEO",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, YAML or TOML (default: ./config.yaml)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "development logging")

	root.AddCommand(importCmd())
	root.AddCommand(collectCmd())
	root.AddCommand(rankCmd())
	root.AddCommand(classifyCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())
	root.AddCommand(versionCmd())

	return root
}

func importCmd() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file-or-url>...",
		Short: "Import Keyword Planner CSV exports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), args, replace)
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "clear stored keywords before importing")
	return cmd
}

func collectCmd() *cobra.Command {
	var sources []string

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Re-import the sources listed in the config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd.Context(), sources)
		},
	}

	cmd.Flags().StringSliceVar(&sources, "source", nil, "specific sources to collect by name")
	return cmd
}

func rankCmd() *cobra.Command {
	var (
		jsonOutput bool
		strategy   string
		brand      string
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Show the top keywords of every strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd.Context(), strategy, brand, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().StringVar(&strategy, "strategy", "", "single strategy slug (e.g. quick-win, best-roi)")
	cmd.Flags().StringVar(&brand, "brand", "", "brand name (default: from config)")
	return cmd
}

func classifyCmd() *cobra.Command {
	var (
		jsonOutput bool
		category   string
		yoy        bool
		noYoY      bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Assign lifecycle categories and show counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd.Context(), category, yoyMode(yoy, noYoY), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().StringVar(&category, "category", "", "list the keywords of one category")
	cmd.Flags().BoolVar(&yoy, "yoy", false, "force year-over-year rules")
	cmd.Flags().BoolVar(&noYoY, "no-yoy", false, "force three-month rules")
	cmd.MarkFlagsMutuallyExclusive("yoy", "no-yoy")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "kwradar", version)
		},
	}
}
