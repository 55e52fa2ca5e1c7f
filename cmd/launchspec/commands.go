package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minerops/launchspec/internal/config"
	"github.com/minerops/launchspec/internal/render"
	"github.com/minerops/launchspec/internal/spec"
)

// command groups the local (file-based) CLI handlers.
type command struct{}

// loadSpecs reads specs from a config file, accepting both full config files
// with [[specs]] tables and bare single-spec documents.
func loadSpecs(path string) ([]spec.Spec, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	specs, err := config.LoadSpecs(path)
	if err != nil {
		// Bare documents fail the config decode when they carry an
		// env table; LoadSpec knows how to read that shape.
		if s, bareErr := config.LoadSpec(path); bareErr == nil {
			return []spec.Spec{s}, nil
		}
		return nil, err
	}
	if len(specs) > 0 {
		return specs, nil
	}
	s, err := config.LoadSpec(path)
	if err != nil {
		return nil, err
	}
	return []spec.Spec{s}, nil
}

func selectSpec(specs []spec.Spec, name string) (*spec.Spec, error) {
	if name == "" {
		if len(specs) == 1 {
			return &specs[0], nil
		}
		return nil, fmt.Errorf("file defines %d specs; use --name to pick one", len(specs))
	}
	for i := range specs {
		if specs[i].Name == name {
			return &specs[i], nil
		}
	}
	return nil, fmt.Errorf("spec %q not found in file", name)
}

// Validate checks every spec in the file and reports violations.
func (c command) Validate(f ValidateFlags) error {
	specs, err := loadSpecs(f.FilePath)
	if err != nil {
		return err
	}

	invalid := 0
	for i := range specs {
		s := &specs[i]
		if err := s.Validate(); err != nil {
			invalid++
			var verr *spec.ValidationError
			if errors.As(err, &verr) && !f.Quiet {
				fmt.Printf("%s: INVALID\n", s.Name)
				for _, v := range verr.Violations {
					fmt.Printf("  - %s\n", v)
				}
				continue
			}
			if !f.Quiet {
				fmt.Printf("%s: INVALID: %v\n", s.Name, err)
			}
			continue
		}
		if !f.Quiet {
			fmt.Printf("%s: OK\n", s.Name)
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d specs invalid", invalid, len(specs))
	}
	return nil
}

// Show prints the normalized spec as JSON, with defaults applied.
func (c command) Show(f ShowFlags) error {
	specs, err := loadSpecs(f.FilePath)
	if err != nil {
		return err
	}
	s, err := selectSpec(specs, f.Name)
	if err != nil {
		return err
	}
	if f.Expand {
		printJSON(struct {
			Spec      *spec.Spec `json:"spec"`
			Instances []string   `json:"instances"`
		}{Spec: s, Instances: s.InstanceNames()})
		return nil
	}
	printJSON(s)
	return nil
}

// Render converts specs into a supervisor config document.
func (c command) Render(f RenderFlags) error {
	specs, err := loadSpecs(f.FilePath)
	if err != nil {
		return err
	}
	if f.Name != "" {
		s, err := selectSpec(specs, f.Name)
		if err != nil {
			return err
		}
		specs = []spec.Spec{*s}
	}

	var out []byte
	switch f.Format {
	case "pm2", "":
		out, err = render.PM2(specs)
	case "supervisord":
		out, err = render.Supervisord(specs)
	default:
		return fmt.Errorf("unknown format: %s (want pm2 or supervisord)", f.Format)
	}
	if err != nil {
		return err
	}

	if f.Output == "" {
		fmt.Print(string(out))
		if len(out) > 0 && out[len(out)-1] != '\n' {
			fmt.Println()
		}
		return nil
	}
	if err := os.WriteFile(f.Output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.Output, err)
	}
	fmt.Printf("Rendered %d spec(s) to %s\n", len(specs), f.Output)
	return nil
}

// Env prints the composed environment for one spec, one K=V per line.
func (c command) Env(f EnvFlags) error {
	cfg, err := config.Load(f.FilePath)
	if err != nil {
		return err
	}
	if f.UseOSEnv {
		cfg.UseOSEnv = true
	}
	cfg.EnvFiles = append(cfg.EnvFiles, f.EnvFiles...)
	cfg.Env = append(cfg.Env, f.EnvKVs...)

	s, err := selectSpec(cfg.Specs, f.Name)
	if err != nil {
		return err
	}
	pairs, err := cfg.ComposedEnv(s)
	if err != nil {
		return err
	}
	for _, kv := range pairs {
		fmt.Println(kv)
	}
	return nil
}

// createValidateCommand creates the validate subcommand
func createValidateCommand(c command, flags *ValidateFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate launch specs in a file",
		Long: `Validate every launch spec in a config file and report violations.

Examples:
  launchspec validate --file=miner.toml
  launchspec validate --file=miner.json --quiet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Validate(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.FilePath, "file", "", "path to spec or config file (required)")
	cmd.Flags().BoolVar(&flags.Quiet, "quiet", false, "suppress per-spec output")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
	return cmd
}

// createShowCommand creates the show subcommand
func createShowCommand(c command, flags *ShowFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a normalized spec as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Show(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.FilePath, "file", "", "path to spec or config file (required)")
	cmd.Flags().StringVar(&flags.Name, "name", "", "spec name when the file defines several")
	cmd.Flags().BoolVar(&flags.Expand, "expand", false, "include the per-replica instance names")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
	return cmd
}

// createRenderCommand creates the render subcommand
func createRenderCommand(c command, flags *RenderFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render specs into a supervisor config format",
		Long: `Render launch specs into a PM2 ecosystem JSON document or a
supervisord program INI document.

Examples:
  launchspec render --file=miner.toml --format=pm2
  launchspec render --file=miner.toml --format=supervisord --out=miner.conf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Render(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.FilePath, "file", "", "path to spec or config file (required)")
	cmd.Flags().StringVar(&flags.Format, "format", "pm2", "output format: pm2 or supervisord")
	cmd.Flags().StringVar(&flags.Output, "out", "", "write output to file instead of stdout")
	cmd.Flags().StringVar(&flags.Name, "name", "", "render only the named spec")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
	return cmd
}

// createEnvCommand creates the env subcommand
func createEnvCommand(c command, flags *EnvFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print the composed environment for a spec",
		Long: `Compose and print the final environment a supervisor would hand to the
process: OS env (opt-in), global env, env files, then the spec's env map.

Examples:
  launchspec env --file=miner.toml --name=miner
  launchspec env --file=miner.toml --name=miner --use-os-env --env-file=.env`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Env(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.FilePath, "file", "", "path to config file (required)")
	cmd.Flags().StringVar(&flags.Name, "name", "", "spec name when the file defines several")
	cmd.Flags().BoolVar(&flags.UseOSEnv, "use-os-env", false, "include the OS environment as the base layer")
	cmd.Flags().StringArrayVar(&flags.EnvKVs, "env", nil, "extra KEY=VALUE pairs (repeatable)")
	cmd.Flags().StringArrayVar(&flags.EnvFiles, "env-file", nil, "extra env files (repeatable)")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
	return cmd
}
