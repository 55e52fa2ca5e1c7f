package main

import "time"

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
}

// ValidateFlags Flag structs to decouple cobra from logic for testing.
type ValidateFlags struct {
	FilePath string
	Quiet    bool
}

type ShowFlags struct {
	FilePath string
	Name     string
	Expand   bool
}

type RenderFlags struct {
	FilePath string
	Format   string
	Output   string
	Name     string
}

type EnvFlags struct {
	FilePath string
	Name     string
	UseOSEnv bool
	EnvKVs   []string
	EnvFiles []string
}

type TemplateCreateFlags struct {
	Type   string
	Name   string
	Output string
	Force  bool
}

type ServeFlags struct {
	ConfigPath string
	Listen     string
	BasePath   string
	StoreDSN   string
	HistoryDSN string
}

// Remote registry connection flags.
type RegisterFlags struct {
	FilePath   string
	APIUrl     string
	APITimeout time.Duration
}

type GetFlags struct {
	Name       string
	Revisions  bool
	APIUrl     string
	APITimeout time.Duration
}

type ListFlags struct {
	APIUrl     string
	APITimeout time.Duration
}

type UnregisterFlags struct {
	Name       string
	APIUrl     string
	APITimeout time.Duration
}
