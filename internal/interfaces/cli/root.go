package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/flowchat-ai/flowchat-cli/internal/auth"
	"github.com/flowchat-ai/flowchat-cli/internal/chat"
	"github.com/flowchat-ai/flowchat-cli/internal/config"
	"github.com/flowchat-ai/flowchat-cli/internal/logging"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// Container holds the dependencies shared by CLI commands.
type Container struct {
	Config     *config.Config
	ConfigPath string
	Logger     zerolog.Logger
	Store      auth.TokenStore
	Client     *chat.Client
}

// Overrides carries flag values that take precedence over the config file.
type Overrides struct {
	Server     string
	ChatflowID string
}

// NewContainer wires config, logging, auth, and the chat client together.
func NewContainer(configPath string, debugFlag bool, ov Overrides) (*Container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if ov.Server != "" {
		cfg.Server = ov.Server
	}
	if ov.ChatflowID != "" {
		cfg.ChatflowID = ov.ChatflowID
	}
	logger := logging.New(cfg.LogLevel, debugFlag)

	cache := auth.NewFileTokenCache(config.TokenCachePath())
	tokens, err := cache.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("ignoring unreadable token cache")
		tokens = auth.TokenPair{}
	}
	store := auth.NewHTTPTokenStore(cfg.Server, tokens, cache, logger)
	gate := auth.NewRetryGate(store, logger)

	return &Container{
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     logger,
		Store:      store,
		Client:     chat.NewClient(cfg.Server, gate, logger),
	}, nil
}

// NewRootCommand builds the base command; subcommands receive a lazily
// initialized container so persistent flags are honored.
func NewRootCommand() *cobra.Command {
	var (
		configPath string
		debugFlag  bool
	)

	rootCmd := &cobra.Command{
		Use:   "flowchat",
		Short: "Flowchat CLI - streaming chat client for chatflow servers",
		Long: `Flowchat CLI talks to a chatflow server over its streaming chat
protocol: answers arrive incrementally as typed events, expired access
tokens are recovered transparently with a single refresh-and-retry, and
file attachments can be uploaded alongside a question.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default is $HOME/.flowchat/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("server", "", "Chatflow server URL (overrides config)")
	rootCmd.PersistentFlags().String("chatflow", "", "Chatflow identifier (overrides config)")

	newContainer := func(cmd *cobra.Command) (*Container, error) {
		server, _ := cmd.Flags().GetString("server")
		chatflow, _ := cmd.Flags().GetString("chatflow")
		return NewContainer(configPath, debugFlag, Overrides{Server: server, ChatflowID: chatflow})
	}

	rootCmd.AddCommand(NewChatCommand(newContainer))
	rootCmd.AddCommand(NewUploadCommand(newContainer))
	rootCmd.AddCommand(NewConfigCommand(newContainer))

	return rootCmd
}

// ContainerFactory builds the dependency container for one command run.
type ContainerFactory func(cmd *cobra.Command) (*Container, error)

func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}
