// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the seekbench server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

seekbench runs three substring search algorithms (naive, KMP and Rabin-Karp)
over the same text and pattern and reports, for each one, the match positions,
the elapsed time and a normalized operation count. Every algorithm can also
be replayed step by step, which is what the trace requests and the -trace
flag expose.

# Usage

Start the msgpack IPC server with default settings:

	seekbench

Serve the JSON API over HTTP instead:

	seekbench -http :5000

Compare the algorithms once and print a KMP trace:

	seekbench -text "ABABDABACDABABCABAB" -pattern "ABABCABAB" -trace kmp

Run the interactive CLI with the additive hash and debug logs:

	seekbench -c -hash additive -d

# Configuration

Runtime configuration lives in a TOML file, created with defaults on first
run:

	[server]
	max_text_len = 1048576
	max_pattern_len = 4096
	reload_every = 100

	[hash]
	variant = "modular"
	base = 256
	modulus = 101

	[trace]
	max_steps = 200000
	cache_entries = 32
	page_size = 256

The IPC server reloads the file every reload_every requests. The -hash flag
overrides the [hash] variant for the current process only.

# IPC Protocol

Requests and responses are msgpack maps on stdin and stdout. Logs always go
to stderr.

	{"id": "c1", "action": "compare", "t": "abcabcabc", "p": "abc"}
	{"id": "t1", "action": "trace", "a": "kmp", "t": "abcabcabc", "p": "abc", "f": 0, "n": 50}
	{"id": "h1", "action": "config", "variant": "additive"}

See the server package for the response shapes.

# Command Line Flags

	-version
	    Show current version
	-d  Enable debug mode with detailed logging
	-c  Run the interactive CLI
	-http string
	    Serve HTTP on this address instead of IPC
	-config string
	    Path to the config file
	-text string
	    Text for a one-shot comparison
	-pattern string
	    Pattern for a one-shot comparison
	-trace string
	    Print the trace of this algorithm in CLI modes
	-hash string
	    Rabin-Karp hash variant: modular or additive
	-log-format string
	    Log format on stderr: text, json or logfmt (default "text")
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/seekbench/internal/cli"
	"github.com/bastiangx/seekbench/internal/logger"
	"github.com/bastiangx/seekbench/internal/utils"
	"github.com/bastiangx/seekbench/pkg/config"
	"github.com/bastiangx/seekbench/pkg/match"
	"github.com/bastiangx/seekbench/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	AppName = "seekbench"
	gh      = "https://github.com/bastiangx/seekbench"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler(onExit func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		if onExit != nil {
			onExit()
		}
		os.Exit(0)
	}()
}

// main only manages the flow between config, CLI and the servers.
func main() {
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	httpAddr := flag.String("http", "", "Serve the JSON API on this address (e.g. "+defaultConfig.HTTP.Addr+") instead of IPC")
	configFile := flag.String("config", "", "Path to the config file")
	text := flag.String("text", "", "Text for a one-shot comparison")
	pattern := flag.String("pattern", "", "Pattern for a one-shot comparison")
	traceAlg := flag.String("trace", "", "Print the trace of this algorithm (naive, kmp, rabinKarp) in CLI modes")
	hashVariant := flag.String("hash", "", "Rabin-Karp hash variant (modular, additive); overrides the config")
	logFormat := flag.String("log-format", "text", "Log format on stderr: text, json or logfmt")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.SetFormatter(logger.ParseFormatter(*logFormat))
	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, configPath := loadConfig(*configFile)
	if *hashVariant != "" {
		if _, err := match.ParseHashVariant(*hashVariant); err != nil {
			log.Fatalf("Bad -hash flag: %v", err)
		}
		appConfig.Hash.Variant = *hashVariant
		// the override is not written back
		configPath = ""
	}

	patternSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "pattern" {
			patternSet = true
		}
	})

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode || *text != "" || patternSet {
		sigHandler(nil)
		log.SetReportTimestamp(false)

		inputHandler, err := cli.NewInputHandler(appConfig)
		if err != nil {
			log.Fatalf("Failed to init CLI: %v", err)
		}
		if *traceAlg != "" {
			alg, err := match.ParseAlgorithm(*traceAlg)
			if err != nil {
				log.Fatalf("Bad -trace flag: %v", err)
			}
			inputHandler.SetTrace(alg, true)
		}

		if !*cliMode {
			if err := inputHandler.RunOnce(*text, *pattern); err != nil {
				log.Fatalf("Compare failed: %v", err)
			}
			return
		}
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	srv, err := server.NewServer(appConfig, configPath)
	if err != nil {
		log.Fatalf("Failed to init server: %v", err)
	}

	if *httpAddr != "" {
		httpServer := server.NewHTTPServer(srv, *httpAddr)
		sigHandler(func() {
			if err := httpServer.Stop(); err != nil {
				log.Errorf("HTTP shutdown: %v", err)
			}
		})
		showStartupInfo("http "+*httpAddr, configPath)
		if err := httpServer.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
		return
	}

	sigHandler(nil)
	log.Debug("spawning IPC")
	showStartupInfo("ipc stdin/stdout", configPath)
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// loadConfig resolves the config path and loads it, creating defaults on
// first run. An empty returned path means nothing is saved or reloaded.
func loadConfig(custom string) (*config.Config, string) {
	if custom != "" {
		cfg, path, err := config.LoadConfigWithPriority(custom)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		return cfg, path
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Warnf("Failed to init path resolver: %v. Using built-in defaults...", err)
		return config.DefaultConfig(), ""
	}
	log.Debug("Runtime", "info", pathResolver.GetRuntimeInfo())

	configPath, err := pathResolver.GetConfigPath("config.toml")
	if err != nil {
		log.Fatalf("Failed to determine config path: (%v)", err)
	}
	log.Debugf("Using config file: (%s)", configPath)

	cfg, err := config.InitConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg, configPath
}

func printVersion() {
	banner := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ seekbench ] naive vs KMP vs Rabin-Karp, step by step")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(mode, configPath string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" seekbench ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("mode: %s", mode)
	log.Infof("config: ( %s )", config.GetActiveConfigPath(configPath))
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
