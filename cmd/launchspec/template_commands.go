package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/minerops/launchspec/pkg/template"
)

const templatesDirectory = "templates"

// TemplateCreate generates a starter spec file
func (c command) TemplateCreate(f TemplateCreateFlags) error {
	templateName := f.Name
	if templateName == "" {
		templateName = f.Type + "-sample"
	}

	outputPath := f.Output
	if outputPath == "" {
		if err := os.MkdirAll(templatesDirectory, 0o755); err != nil {
			return fmt.Errorf("failed to create templates directory: %w", err)
		}
		outputPath = filepath.Join(templatesDirectory, templateName+".json")
	}

	if _, err := os.Stat(outputPath); err == nil && !f.Force {
		return fmt.Errorf("template file '%s' already exists (use --force to overwrite)", outputPath)
	}

	generator := template.NewGenerator()
	content, err := generator.GenerateJSON(template.TemplateType(f.Type), templateName)
	if err != nil {
		return fmt.Errorf("failed to generate template: %w", err)
	}

	if err := os.WriteFile(outputPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write template file: %w", err)
	}

	fmt.Printf("Template '%s' created: %s\n", templateName, outputPath)
	fmt.Printf("Edit the template and register with: launchspec register --file=%s\n", outputPath)
	return nil
}

// createTemplateCommand creates the template subcommand with its create child
func createTemplateCommand(c command, flags *TemplateCreateFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Generate starter spec files",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a starter spec from a built-in template",
		Long: `Create a starter launch spec file from a built-in template.

Supported types: miner, worker, web, api, cron, simple

Examples:
  launchspec template create --type=miner --name=miner
  launchspec template create --type=worker --output=./worker.json --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.TemplateCreate(*flags)
		},
	}
	create.Flags().StringVar(&flags.Type, "type", "", "template type (required)")
	create.Flags().StringVar(&flags.Name, "name", "", "spec name (defaults to <type>-sample)")
	create.Flags().StringVar(&flags.Output, "output", "", "output file path")
	create.Flags().BoolVar(&flags.Force, "force", false, "overwrite existing file")
	if err := create.MarkFlagRequired("type"); err != nil {
		panic(err)
	}

	cmd.AddCommand(create)
	return cmd
}
