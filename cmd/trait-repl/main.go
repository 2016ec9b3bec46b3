// Command trait-repl is an interactive shell for loading a trait-resolution
// program and solving the goals it declares, in the spirit of the original
// engine's own chalki REPL.
package main

import (
	"fmt"
	"os"

	"github.com/latticelang/traitcore/cmd/replcore"
	"github.com/latticelang/traitcore/internal/config"
	"github.com/latticelang/traitcore/internal/querycache"
	"github.com/latticelang/traitcore/internal/solve"
	"github.com/latticelang/traitcore/internal/trace"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	var cachePath, configPath string
	var recursive, traceFlag bool
	for i := 1; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "-recursive":
			recursive = true
		case "-trace":
			traceFlag = true
		case "-cache":
			if i+1 < len(os.Args) {
				cachePath = os.Args[i+1]
				i++
			}
		case "-config":
			if i+1 < len(os.Args) {
				configPath = os.Args[i+1]
				i++
			}
		}
	}

	cfg := config.DefaultSolverConfig()
	if configPath != "" {
		loaded, err := config.LoadSolverConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if recursive {
		cfg.CycleStrategy = "recursive"
	}
	if traceFlag {
		cfg.Trace = true
	}

	trace.Verbose = cfg.Trace

	repl := replcore.New(os.Stdin, os.Stdout)
	repl.OverflowDepth = cfg.OverflowDepth
	if cfg.CycleStrategy == "recursive" {
		repl.Strategy = solve.Recursive
	} else {
		repl.Strategy = solve.Tabling
	}

	if cachePath != "" {
		cache, err := querycache.Open(cachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening query cache: %s\n", err)
			os.Exit(1)
		}
		defer cache.Close()
		repl.SetCache(cache)
	}

	repl.Run()
}
