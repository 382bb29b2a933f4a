package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/corpus"
	"github.com/fwojciec/corpus/fs"
	"github.com/fwojciec/corpus/goquery"
	"github.com/fwojciec/corpus/mongo"
	"github.com/fwojciec/corpus/readability"
	corpusslog "github.com/fwojciec/corpus/slog"
	"github.com/fwojciec/corpus/sqlite"
	"github.com/fwojciec/corpus/trafilatura"
	"github.com/fwojciec/corpus/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Documents overrides the configured store. Set before calling Run().
	Documents corpus.DocumentService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("corpus"),
		kong.Description("Incrementally crawl a fixed list of articles into a text corpus"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'corpus --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger, err = newLogger(stderr, cli.LogLevel, cli.LogFormat)
	if err != nil {
		return err
	}

	deps.Config, err = yaml.LoadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Set CORPUS_CONFIG or pass --config to use a different file\n")
		return fmt.Errorf("failed to load config %q: %w", cli.Config, err)
	}

	deps.Registry, err = NewRegistry(deps.Config.Sources)
	if err != nil {
		return err
	}

	// resolve works offline and needs no store.
	if strings.HasPrefix(kongCtx.Command(), "resolve") {
		return kongCtx.Run(deps)
	}

	docs := m.Documents
	if docs == nil {
		docs, err = OpenDocumentService(ctx, deps.Config.DB)
		if err != nil {
			return fmt.Errorf("failed to open %s store: %w", deps.Config.DB.Driver, err)
		}
	}
	defer docs.Close()

	deps.Documents = corpusslog.NewLoggingDocumentService(docs, deps.Logger)
	deps.Ledger = fs.NewProgressLedger(deps.Config.ProgressFile)

	return kongCtx.Run(deps)
}

// newLogger builds the process logger from the --log-level and --log-format flags.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// NewRegistry registers one source per configured kind, choosing the
// extractor by its strategy.
func NewRegistry(sources map[string]corpus.SourceConfig) (*corpus.Registry, error) {
	reg := corpus.NewRegistry()
	for kind, cfg := range sources {
		var ext corpus.TextExtractor
		switch cfg.Strategy {
		case corpus.StrategyReadability:
			ext = readability.NewExtractor()
		case corpus.StrategyTrafilatura:
			ext = trafilatura.NewExtractor()
		default:
			sel, err := goquery.NewExtractorFromConfig(cfg)
			if err != nil {
				return nil, fmt.Errorf("source %q: %w", kind, err)
			}
			ext = sel
		}

		if err := reg.Register(&corpus.Source{
			Kind:             kind,
			URLTemplate:      cfg.URL,
			SpaceReplacement: cfg.Space,
			Extractor:        ext,
		}); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// OpenDocumentService opens the store selected by the db section.
func OpenDocumentService(ctx context.Context, cfg corpus.DBConfig) (corpus.DocumentService, error) {
	switch cfg.Driver {
	case corpus.DriverSQLite:
		db := sqlite.NewDB(cfg.Path)
		if err := db.Open(); err != nil {
			return nil, err
		}
		return sqlite.NewDocumentService(db), nil
	case corpus.DriverFS:
		return fs.NewDocumentService(cfg.Path), nil
	case corpus.DriverMongo:
		db := mongo.NewDB(cfg.MongoURI(), cfg.Name, cfg.Collection)
		if err := db.Open(ctx); err != nil {
			return nil, err
		}
		return mongo.NewDocumentService(db), nil
	default:
		return nil, corpus.Errorf(corpus.EINVALID, "unknown db driver %q", cfg.Driver)
	}
}
