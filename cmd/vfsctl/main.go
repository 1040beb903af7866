package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	vfs "github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/cmd"
	"github.com/mwantia/tenantvfs/cmd/builtin"
	"github.com/mwantia/tenantvfs/config"
	"github.com/mwantia/tenantvfs/identity"
	"github.com/mwantia/tenantvfs/log"
	"github.com/mwantia/tenantvfs/mount"
	"github.com/mwantia/tenantvfs/registry"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file (default "+config.DefaultPath()+")")
	tenant := flag.String("tenant", registry.DefaultTenant, "Tenant to operate on")
	userID := flag.String("user", envOr("TENANTVFS_USER", "operator"), "User the commands run as")
	groups := flag.String("groups", mount.DefaultRootGroup, "Comma separated groups of the user")
	shutdownTimeout := flag.Duration("shutdown-timeout", 30*time.Second, "Timeout for closing the tenant backend")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLoggerFromConfig("vfsctl", cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	reg, err := registry.NewRegistry(config.NewProviderLoader(cfg, logger),
		registry.WithLogger(logger.Named("registry")),
		registry.WithFatalHandler(func(err error) {
			logger.Error("Tenant could not be loaded: %v", err)
		}))
	if err != nil {
		logger.Fatal("Failed to create registry: %v", err)
	}

	user := &identity.User{ID: *userID, Groups: splitGroups(*groups)}
	code := run(identity.WithUser(ctx, user), reg, *tenant, flag.Args(), logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), *shutdownTimeout)
	defer cancel()
	if err := reg.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down registry: %v", err)
		code = 1
	}

	os.Exit(code)
}

func run(ctx context.Context, reg *registry.Registry, tenant string, args []string, logger *log.Logger) int {
	provider, err := reg.GetProvider(ctx, tenant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open tenant '%s': %v\n", tenant, err)
		return 1
	}

	manager, err := cmd.NewManager(builtin.Commands()...)
	if err != nil {
		logger.Error("Failed to register commands: %v", err)
		return 1
	}

	fs := provider.FileSystem()
	if len(args) > 0 {
		return execute(ctx, manager, fs, os.Stdout, args)
	}

	logger.Debug("Starting shell for tenant '%s'", fs.Tenant())
	return repl(ctx, manager, fs, os.Stdin, os.Stdout)
}

func repl(ctx context.Context, manager *cmd.Manager, fs *vfs.VirtualFileSystem, in io.Reader, out io.Writer) int {
	lines := make(chan string)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	code := 0
	for {
		fmt.Fprintf(out, "%s> ", fs.Tenant())

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return code
		case next, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return code
			}
			line = next
		}

		words, err := cmd.SplitLine(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if len(words) == 0 {
			continue
		}

		switch words[0] {
		case "exit", "quit":
			return code
		case "help":
			manager.Help(out)
			continue
		}
		code = execute(ctx, manager, fs, out, words)
	}
}

func execute(ctx context.Context, manager *cmd.Manager, fs *vfs.VirtualFileSystem, out io.Writer, words []string) int {
	code, err := manager.Execute(ctx, fs, out, words...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", words[0], err)
		if code == 0 {
			code = 1
		}
	}
	return code
}

func splitGroups(raw string) []string {
	var groups []string
	for group := range strings.SplitSeq(raw, ",") {
		if group = strings.TrimSpace(group); group != "" {
			groups = append(groups, group)
		}
	}
	return groups
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
