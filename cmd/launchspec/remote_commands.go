package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/minerops/launchspec/pkg/client"
)

const defaultAPIUrl = "http://127.0.0.1:8080/api"

func newAPIClient(apiUrl string, timeout time.Duration) *client.Client {
	if apiUrl == "" {
		apiUrl = defaultAPIUrl
	}
	return client.New(client.Config{BaseURL: apiUrl, Timeout: timeout})
}

func requireReachable(c *client.Client, apiUrl string) error {
	if apiUrl == "" {
		apiUrl = defaultAPIUrl
	}
	if !c.IsReachable(context.Background()) {
		return fmt.Errorf("registry not reachable at %s - start it first with 'launchspec serve'", apiUrl)
	}
	return nil
}

// Register validates a spec file locally, then registers it with the remote
// registry.
func (c command) Register(f RegisterFlags) error {
	specs, err := loadSpecs(f.FilePath)
	if err != nil {
		return err
	}

	api := newAPIClient(f.APIUrl, f.APITimeout)
	if err := requireReachable(api, f.APIUrl); err != nil {
		return err
	}

	ctx := context.Background()
	for i := range specs {
		if err := specs[i].Validate(); err != nil {
			return err
		}
		rev, err := api.Register(ctx, specs[i])
		if err != nil {
			return err
		}
		fmt.Printf("Registered %s (revision %s)\n", specs[i].Name, rev)
	}
	return nil
}

// Get prints the head record, or the full revision history, of a named spec.
func (c command) Get(f GetFlags) error {
	api := newAPIClient(f.APIUrl, f.APITimeout)
	if err := requireReachable(api, f.APIUrl); err != nil {
		return err
	}

	ctx := context.Background()
	if f.Revisions {
		revs, err := api.Revisions(ctx, f.Name)
		if err != nil {
			return err
		}
		printJSON(revs)
		return nil
	}
	rec, err := api.Get(ctx, f.Name)
	if err != nil {
		return err
	}
	printJSON(rec)
	return nil
}

// List prints all registered specs.
func (c command) List(f ListFlags) error {
	api := newAPIClient(f.APIUrl, f.APITimeout)
	if err := requireReachable(api, f.APIUrl); err != nil {
		return err
	}

	recs, err := api.List(context.Background())
	if err != nil {
		return err
	}
	printJSON(recs)
	return nil
}

// Unregister removes a spec from the remote registry.
func (c command) Unregister(f UnregisterFlags) error {
	api := newAPIClient(f.APIUrl, f.APITimeout)
	if err := requireReachable(api, f.APIUrl); err != nil {
		return err
	}

	if err := api.Unregister(context.Background(), f.Name); err != nil {
		return err
	}
	fmt.Printf("Unregistered %s\n", f.Name)
	return nil
}

func addAPIFlags(cmd *cobra.Command, apiUrl *string, apiTimeout *time.Duration) {
	cmd.Flags().StringVar(apiUrl, "api-url", "", "registry URL (e.g. http://host:8080/api)")
	cmd.Flags().DurationVar(apiTimeout, "api-timeout", 10*time.Second, "request timeout")
}

// createRegisterCommand creates the register subcommand
func createRegisterCommand(c command, flags *RegisterFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register specs from a file with the registry",
		Long: `Register every spec in a file with the remote registry. Re-registering
an existing name appends a new revision.

Examples:
  launchspec register --file=miner.toml
  launchspec register --file=miner.json --api-url=http://remote:8080/api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Register(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.FilePath, "file", "", "path to spec or config file (required)")
	addAPIFlags(cmd, &flags.APIUrl, &flags.APITimeout)
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
	return cmd
}

// createGetCommand creates the get subcommand
func createGetCommand(c command, flags *GetFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch a registered spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Get(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.Name, "name", "", "spec name (required)")
	cmd.Flags().BoolVar(&flags.Revisions, "revisions", false, "show the full revision history")
	addAPIFlags(cmd, &flags.APIUrl, &flags.APITimeout)
	if err := cmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}
	return cmd
}

// createListCommand creates the list subcommand
func createListCommand(c command, flags *ListFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all registered specs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.List(*flags)
		},
	}
	addAPIFlags(cmd, &flags.APIUrl, &flags.APITimeout)
	return cmd
}

// createUnregisterCommand creates the unregister subcommand
func createUnregisterCommand(c command, flags *UnregisterFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unregister",
		Short: "Remove a spec from the registry",
		Long: `Remove a spec from the registry. Its revision history is kept.

Examples:
  launchspec unregister --name=miner
  launchspec unregister --name=miner --api-url=http://remote:8080/api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Unregister(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.Name, "name", "", "spec name (required)")
	addAPIFlags(cmd, &flags.APIUrl, &flags.APITimeout)
	if err := cmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}
	return cmd
}
