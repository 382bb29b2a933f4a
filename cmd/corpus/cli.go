package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/corpus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Config    *corpus.Config
	Registry  *corpus.Registry
	Documents corpus.DocumentService
	Ledger    corpus.ProgressLedger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config    string `short:"c" env:"CORPUS_CONFIG" default:"config.yaml" help:"Path to the YAML config file"`
	LogLevel  string `env:"CORPUS_LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
	LogFormat string `env:"CORPUS_LOG_FORMAT" default:"text" enum:"text,json" help:"Log format (text, json)"`

	Crawl   CrawlCmd   `cmd:"" help:"Crawl the items list, fetching only what changed"`
	Status  StatusCmd  `cmd:"" help:"Show the resume cursor and stored document count"`
	Resolve ResolveCmd `cmd:"" help:"Print canonical URLs for item identifiers"`
	Show    ShowCmd    `cmd:"" help:"Print a stored document"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Restart bool `help:"Ignore the stored cursor and start from the first item"`
	MaxDocs int  `help:"Override logic.max_docs for this run"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct{}

// ResolveCmd is the "resolve" subcommand.
type ResolveCmd struct {
	IDs []string `arg:"" name:"item" help:"Item identifiers in source::title form"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Target string `arg:"" help:"Item identifier (source::title) or URL"`
	Full   bool   `short:"f" help:"Print the full text"`
}
