package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var apps = []string{"mindspace", "artisanmart", "papers"}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "server",
		Short: "Backend for the mindspace, artisanmart and papers web apps",
		Long: `server runs one of three JSON APIs from a single binary:
  mindspace    journaling with mood insights (MongoDB)
  artisanmart  multi-vendor marketplace (MongoDB)
  papers       paper submission and peer review (SQL)

Settings come from the environment (or .env), optionally overlaid by the
YAML file named in CONFIG_FILE.`,
		SilenceUsage: true,
	}
	for _, app := range apps {
		root.AddCommand(newServeCmd(app))
	}
	root.AddCommand(newSeedCmd())
	return root
}

func validApp(app string) error {
	for _, a := range apps {
		if a == app {
			return nil
		}
	}
	return fmt.Errorf("unknown app %q, expected one of %v", app, apps)
}
