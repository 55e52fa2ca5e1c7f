package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot creates the root command and wires all subcommands
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	validateFlags := &ValidateFlags{}
	showFlags := &ShowFlags{}
	renderFlags := &RenderFlags{}
	envFlags := &EnvFlags{}
	templateFlags := &TemplateCreateFlags{}
	serveFlags := &ServeFlags{}
	registerFlags := &RegisterFlags{}
	getFlags := &GetFlags{}
	listFlags := &ListFlags{}
	unregisterFlags := &UnregisterFlags{}

	c := command{}

	root := createRootCommand(globalFlags)

	root.AddCommand(
		createValidateCommand(c, validateFlags),
		createShowCommand(c, showFlags),
		createRenderCommand(c, renderFlags),
		createEnvCommand(c, envFlags),
		createTemplateCommand(c, templateFlags),
		createServeCommand(serveFlags),
		createRegisterCommand(c, registerFlags),
		createGetCommand(c, getFlags),
		createListCommand(c, listFlags),
		createUnregisterCommand(c, unregisterFlags),
	)

	return root
}

// createRootCommand creates the root command with minimal persistent flags
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "launchspec",
		Short: "Process launch spec validation and registry tool",
		Long: `Launchspec validates, renders, and manages declarative process launch
specifications for external process supervisors.

Examples:
  launchspec validate --file=miner.toml
  launchspec render --file=miner.toml --format=pm2
  launchspec serve --config=launchspec.toml          # Start registry server
  launchspec list --api-url=http://remote:8080/api   # Remote registry`,
	}

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to config file (optional)")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return root
}
