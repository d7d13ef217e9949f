package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/term"

	"assistant/pkg/agent"
	"assistant/pkg/backup"
	"assistant/pkg/config"
	"assistant/pkg/conversation"
	"assistant/pkg/llm"
	"assistant/pkg/llm/resilience/ratelimit"
	"assistant/pkg/logx"
	"assistant/pkg/metrics"
	"assistant/pkg/orchestrator"
	"assistant/pkg/server"
	"assistant/pkg/tools"
)

// Version information - set via ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	var (
		configPath  = flag.String("config", "assistant.yaml", "Path to configuration file")
		addr        = flag.String("addr", "", "Listen address (overrides config)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("assistant %s (%s)\n", version, commit)
		os.Exit(0)
	}

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "assistant: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	if err := logx.EnableFileSink(cfg.LogsDir); err != nil {
		return fmt.Errorf("initializing log sink: %w", err)
	}
	logger := logx.NewLogger("main")

	if cfg.OpenRouter.APIKey == "" && hasRemoteModels(cfg) {
		key, promptErr := promptAPIKey()
		if promptErr != nil {
			return promptErr
		}
		cfg.OpenRouter.APIKey = key
	}

	if err := os.MkdirAll(cfg.WorkspaceDir, 0o755); err != nil {
		return fmt.Errorf("creating workspace directory: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	recorder := metrics.NewRecorder(registry)

	orch, err := orchestrator.New(cfg, recorder)
	if err != nil {
		return err
	}
	// pace every orchestrator call, failover attempts share one slot
	client := llm.Chain(orch, ratelimit.Middleware(orch.Limiter()))

	workspace := tools.NewWorkspace(cfg.WorkspaceDir)
	catalog, err := tools.NewCatalog(tools.Options{
		Workspace:      workspace,
		Backups:        backup.NewStore(cfg.BackupDir),
		AllowedCmds:    cfg.AllowedCommands,
		CommandTimeout: int(cfg.CommandTimeout.Seconds()),
	})
	if err != nil {
		return err
	}

	assistant := agent.New(agent.Options{
		Client:    client,
		Registry:  catalog,
		Workspace: workspace,
		Recorder:  recorder,
	})

	srv := server.New(server.Options{
		Agent:     assistant,
		Archive:   conversation.NewArchive(cfg.ChatsDir),
		Workspace: workspace,
		Recorder:  recorder,
		Gatherer:  registry,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("assistant %s starting, models: %s", version, strings.Join(cfg.Models, ", "))
	return srv.Start(ctx, cfg.Server.Addr)
}

// hasRemoteModels reports whether any configured model needs OpenRouter.
func hasRemoteModels(cfg *config.Config) bool {
	for _, m := range cfg.Models {
		if !strings.HasPrefix(m, "ollama/") {
			return true
		}
	}
	return false
}

// promptAPIKey reads the OpenRouter key interactively when stdin is a
// terminal. Without one, the missing key is a hard error.
func promptAPIKey() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("OPENROUTER_API_KEY is not set")
	}
	fmt.Print("Enter your OpenRouter API key: ")
	key, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	if len(key) == 0 {
		return "", fmt.Errorf("OPENROUTER_API_KEY is not set")
	}
	return string(key), nil
}
