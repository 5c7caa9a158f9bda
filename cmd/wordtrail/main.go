/*
Package main runs the wordtrail suggestion service.

Note: This is a BETA release. APIs and functionality may rapidly change.

WordTrail suggests the words a user is most likely typing, in English, Italian
and Japanese. Each language gets a prefix index over a word frequency list; a
user's past selections re-rank the words a prefix matches. Japanese prefixes may
be typed in romaji.

# Usage

Start the msgpack IPC server with default settings:

	wordtrail

Serve the HTTP API instead:

	wordtrail -http -addr 127.0.0.1:5050

Run in CLI mode for interactive testing:

	wordtrail -c -limit 10 -lang ja

The data directory holds word lists named <variant>_<lang>.msgpack.gz (cBpack)
or <variant>_<lang>.txt. Convert text lists with the wordpack tool.

# Configuration

Runtime configuration is a TOML file, created with defaults when missing:

	[server]
	max_limit = 64
	min_prefix = 1
	max_prefix = 60
	enable_filter = true
	http_addr = "127.0.0.1:5050"

	[dict]
	data_dir = "data"
	wordlist = "best"
	languages = ["en", "it", "ja"]

	[personalize]
	time_decay_factor = 0.95
	enabled = true

	[profiles]
	store_path = "profiles"

The IPC server reloads the file periodically without restart.

# Modes

The IPC and HTTP servers answer while the indexes are still building, with a
503 code until they are ready. CLI mode waits for the build first.

User selections are kept per language and persisted to the profile store, so
rankings survive restarts.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/bastiangx/wordtrail/internal/cli"
	"github.com/bastiangx/wordtrail/internal/handler"
	"github.com/bastiangx/wordtrail/internal/profiles"
	"github.com/bastiangx/wordtrail/internal/utils"
	"github.com/bastiangx/wordtrail/pkg/config"
	"github.com/bastiangx/wordtrail/pkg/dictionary"
	"github.com/bastiangx/wordtrail/pkg/personalize"
	"github.com/bastiangx/wordtrail/pkg/server"
	"github.com/bastiangx/wordtrail/pkg/store"
	"github.com/bastiangx/wordtrail/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "wordtrail"
	gh      = "https://github.com/bastiangx/wordtrail"
)

// sigHandler runs cleanup and exits on SIGINT or SIGTERM.
func sigHandler(cleanup func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cleanup()
		os.Exit(0)
	}()
}

// main wires config, word lists, profiles and the chosen front end.
// It does not implement logic for them and only manages the flow.
func main() {
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	configFile := flag.String("config", "", "Path to a custom config.toml")
	dataDir := flag.String("data", "", "Directory containing the word lists (default from config)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	httpMode := flag.Bool("http", false, "Serve the HTTP API instead of IPC")
	jsonMode := flag.Bool("json", false, "Use newline-delimited JSON instead of msgpack for IPC")
	addr := flag.String("addr", "", "HTTP listen address (default from config)")
	langs := flag.String("langs", "", "Comma separated languages to index (default from config)")
	wordlist := flag.String("wordlist", "", "Word list variant: best, small, large or combined")
	storePath := flag.String("store", "", "Profile store directory (default from config)")
	noStore := flag.Bool("no-store", false, "Keep profiles in memory only")
	lang := flag.String("lang", defaultConfig.CLI.DefaultLanguage, "CLI default language")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of suggestions to return")
	minPrefix := flag.Int("prmin", defaultConfig.CLI.DefaultMinLen, "Minimum prefix length for suggestions (1 < n <= prmax)")
	maxPrefix := flag.Int("prmax", defaultConfig.CLI.DefaultMaxLen, "Maximum prefix length for suggestions")
	noFilter := flag.Bool("no-filter", defaultConfig.CLI.DefaultNoFilter, "Disable input filtering (DBG only)")
	rebuildConfig := flag.Bool("rebuild-config", false, "Overwrite the default config.toml with built-in defaults and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	// stdout carries IPC responses
	log.SetOutput(os.Stderr)

	if *rebuildConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote default config to %s\n", config.GetActiveConfigPath(""))
		os.Exit(0)
	}

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Print("Either env is not set or system is not supported")
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	if *dataDir == "" {
		*dataDir = appConfig.Dict.DataDir
	}
	resolvedDataDir, err := pathResolver.GetDataDir(*dataDir)
	if err != nil {
		log.Fatalf("Failed to resolve data dir:(%v)", err)
	}
	log.Debugf("Using data dir at: %s", resolvedDataDir)
	log.Debug("Word lists", "files", utils.ListWordlists(resolvedDataDir))
	for k, v := range pathResolver.GetRuntimeInfo() {
		log.Debug("runtime", k, v)
	}

	languages := appConfig.Dict.Languages
	if *langs != "" {
		languages = strings.Split(*langs, ",")
	}
	if *wordlist == "" {
		*wordlist = appConfig.Dict.Wordlist
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := dictionary.NewSource(resolvedDataDir)
	rec := suggest.Load(ctx, source, suggest.Options{
		Languages: languages,
		Wordlist:  *wordlist,
		Scorer:    personalize.NewScorer(appConfig.Personalize.TimeDecayFactor),
	})

	st := openStore(appConfig, pathResolver, *storePath, *noStore)
	closeStore := sync.OnceFunc(func() {
		if st == nil {
			return
		}
		if err := st.Close(); err != nil {
			log.Errorf("Failed to close profile store: %v", err)
		}
	})
	defer closeStore()
	users := profiles.New(rec.Languages(), st, appConfig.Personalize.Enabled)
	if n, err := users.Restore(); err != nil {
		log.Warnf("Some profiles could not be restored: %v", err)
	} else {
		log.Debugf("Restored %d profiles", n)
	}

	sigHandler(func() {
		cancel()
		closeStore()
	})

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"minPrefix", *minPrefix,
			"maxPrefix", *maxPrefix,
			"limit", *limit,
			"noFilter", *noFilter)

		if err := rec.Wait(ctx); err != nil {
			closeStore()
			log.Fatalf("Failed to build indexes: %v", err)
		}
		inputHandler := cli.NewInputHandler(rec, users, cli.Options{
			MinPrefix:  *minPrefix,
			MaxPrefix:  *maxPrefix,
			Limit:      *limit,
			NoFilter:   *noFilter,
			Language:   *lang,
			Config:     appConfig,
			ConfigPath: configPath,
		}, os.Stdout)
		if err := inputHandler.Start(os.Stdin); err != nil {
			closeStore()
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	if *httpMode {
		if *addr == "" {
			*addr = appConfig.Server.HTTPAddr
		}
		router := handler.SetupRouter(handler.NewController(rec, users, appConfig.CLI.DefaultLanguage, appConfig.Server.MaxLimit))
		showStartupInfo(resolvedDataDir, configPath, "http://"+*addr)
		if err := http.ListenAndServe(*addr, router); err != nil {
			closeStore()
			log.Fatalf("HTTP server stopped: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	enc := server.EncodingMsgpack
	if *jsonMode {
		enc = server.EncodingJSON
	}
	srv := server.NewServer(rec, users, appConfig, configPath, enc)

	showStartupInfo(resolvedDataDir, configPath, "stdin/stdout")

	if err := srv.Start(); err != nil {
		closeStore()
		log.Fatalf("Server stopped: %v", err)
	}
}

// openStore opens the profile store, or returns nil to keep profiles in memory.
func openStore(cfg *config.Config, pr *utils.PathResolver, flagPath string, disabled bool) *store.Store {
	if disabled {
		return nil
	}
	path := flagPath
	if path == "" {
		path = cfg.Profiles.StorePath
	}
	if path == "" {
		return nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(pr.GetConfigDir(), path)
	}

	st, err := store.Open(path)
	if err != nil {
		log.Warnf("Profiles will not persist, store unavailable: %v", err)
		return nil
	}
	log.Debugf("Using profile store at: %s", path)
	return st
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ WordTrail ] Suggests the words you type, in your own order")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(dataDir, configPath, endpoint string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "===========")
	fmt.Fprintln(os.Stderr, " WordTrail ")
	fmt.Fprintln(os.Stderr, "===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("data dir: ( %s )", dataDir)
	log.Infof("config: ( %s )", config.GetActiveConfigPath(configPath))
	log.Infof("listening on: %s", endpoint)
	log.Info("status: indexing in background")
	fmt.Fprintln(os.Stderr, "===========")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
