package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go-page-builder/internal/catalog"
	"go-page-builder/internal/componentmanager"
	"go-page-builder/internal/composer"
	"go-page-builder/internal/config"
	"go-page-builder/internal/renderer"
	"go-page-builder/internal/storage"
	"go-page-builder/internal/templating"
)

// errUsage marks a command line that could not be parsed.
var errUsage = errors.New("invalid usage")

// cli carries the dependencies every command uses.
type cli struct {
	out        io.Writer
	in         *bufio.Reader
	logger     *slog.Logger
	manager    *componentmanager.Manager
	pages      *storage.SQLiteStore
	pageEngine *templating.Engine
	funnels    *composer.FunnelSet
	catalog    *catalog.Catalog
}

func main() {
	cfg, err := config.Load(os.Getenv("PAGEBUILDER_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stderr)

	c, closeFn, err := newCLI(context.Background(), cfg, logger, os.Stdout, os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeFn()

	if err := c.run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeFn()
		os.Exit(1)
	}
}

func newCLI(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, in io.Reader) (*cli, func(), error) {
	store, err := storage.NewJSONStore(cfg.Storage.MetadataDir, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}
	pages, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening page database: %w", err)
	}
	builtins, err := catalog.NewEmbeddedSource()
	if err != nil {
		pages.Close()
		return nil, nil, err
	}

	c := &cli{
		out:     out,
		in:      bufio.NewReader(in),
		logger:  logger,
		manager: componentmanager.NewManager(store, logger, cfg.Storage.ComponentsDir),
		pages:   pages,
		funnels: composer.DefaultFunnels(),
		catalog: catalog.Load(ctx, builtins, catalog.StoreSource{Store: store}, logger),
	}
	c.pageEngine, err = templating.NewEngine(pages, func() templating.Definitions { return c.catalog }, renderer.New(logger), logger)
	if err != nil {
		pages.Close()
		return nil, nil, err
	}
	return c, sync.OnceFunc(func() { pages.Close() }), nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: builder-cli <command> [options]")
	fmt.Fprintln(w, "Components:")
	fmt.Fprintln(w, "  catalog                          List built-in and custom components")
	fmt.Fprintln(w, "  list [-all]                      List custom components (-all includes removed)")
	fmt.Fprintln(w, "  create -name <name> [-category <c>]")
	fmt.Fprintln(w, "  update -id <id> [-name] [-description] [-category] [-code-file] [-styles-file] [-public true|false]")
	fmt.Fprintln(w, "  delete -id <id,...> [-force] [-yes]")
	fmt.Fprintln(w, "  purge-removed [-yes]             Permanently delete removed components")
	fmt.Fprintln(w, "  validate (-file <path> | -id <id>)")
	fmt.Fprintln(w, "  sync -id <id>                    Reload code and styles from the component folder")
	fmt.Fprintln(w, "Pages:")
	fmt.Fprintln(w, "  funnels [-group <group>]         List funnel templates")
	fmt.Fprintln(w, "  page-create -website <id> -title <t> -slug <s> [-funnel <id>]")
	fmt.Fprintln(w, "  page-list -website <id>")
	fmt.Fprintln(w, "  apply-funnel -page <id> -funnel <id>")
	fmt.Fprintln(w, "  publish -page <id> [-unpublish]")
	fmt.Fprintln(w, "  preview -page <id> [-out <file>] [-open]")
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "catalog":
		return c.handleCatalog()
	case "list":
		return c.handleList(rest)
	case "create":
		return c.handleCreate(rest)
	case "update":
		return c.handleUpdate(rest)
	case "delete":
		return c.handleDelete(rest)
	case "purge-removed":
		return c.handlePurge(rest)
	case "validate":
		return c.handleValidate(rest)
	case "sync":
		return c.handleSync(rest)
	case "funnels":
		return c.handleFunnels(rest)
	case "page-create":
		return c.handlePageCreate(ctx, rest)
	case "page-list":
		return c.handlePageList(ctx, rest)
	case "apply-funnel":
		return c.handleApplyFunnel(ctx, rest)
	case "publish":
		return c.handlePublish(ctx, rest)
	case "preview":
		return c.handlePreview(ctx, rest)
	case "help", "-h", "--help":
		printUsage(c.out)
		return nil
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func (c *cli) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

// askForConfirmation prompts until the user answers; anything but yes is
// a no.
func (c *cli) askForConfirmation(prompt string) bool {
	for {
		fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
		response, err := c.in.ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		switch response {
		case "y", "yes":
			return true
		case "n", "no", "":
			return false
		}
		if err != nil {
			return false
		}
	}
}
