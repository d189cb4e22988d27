// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2015-2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/businessperformancetuning/jaws/load"
	"github.com/businessperformancetuning/jaws/memory"
	"github.com/decred/dcrd/dcrutil"
	"github.com/jrick/flagfile"
)

const (
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "jaws.log"
	defaultConfigFilename = "jaws.conf"
)

var (
	defaultHomeDir    = dcrutil.AppDataDir("jaws", false)
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultHomeDir, defaultLogDirname)
)

func versionString() string {
	return "1.0.0"
}

type config struct {
	Config      flag.Value
	ShowVersion bool
	Low         bool
	Mid         bool
	High        bool
	Static      bool
	DebugLevel  string
	LogDir      string
	NoLogFile   bool

	percentage uint64    // Resolved tier
	mode       load.Mode // Resolved mode
	tiers      []string  // Tier flags as given
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `Jaws: Memory Consumption Tool
Usage:
  jaws -low|-mid|-high [-static] [flags]
Tiers (exactly one required):
  -low
	Consume 30%% of total RAM
  -mid
	Consume 50%% of total RAM
  -high
	Consume 75%% of total RAM
Flags:
  -static
	Create a static buffer (no random access)
  -C value
	config file (default %v)
  -V	Show version and exit
  -debuglevel string
	Logging level {trace, debug, info, warn, error, critical} or
	<subsystem>=<level>,... -- use show to list subsystems (default %q)
  -logdir string
	Directory to log output (default %v)
  -nologfile
	Log to standard output only
  --help
	Show this help message and exit
`, defaultConfigFile, defaultLogLevel, defaultLogDir)
}

func (c *config) FlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("jaws", flag.ContinueOnError)
	configParser := flagfile.Parser{AllowUnknown: false}
	c.Config = configParser.ConfigFlag(fs)
	fs.Var(c.Config, "C", "config file")
	fs.BoolVar(&c.ShowVersion, "V", false, "")
	fs.BoolVar(&c.Low, "low", false, "")
	fs.BoolVar(&c.Mid, "mid", false, "")
	fs.BoolVar(&c.High, "high", false, "")
	fs.BoolVar(&c.Static, "static", false, "")
	fs.StringVar(&c.DebugLevel, "debuglevel", defaultLogLevel, "")
	fs.StringVar(&c.LogDir, "logdir", defaultLogDir, "")
	fs.BoolVar(&c.NoLogFile, "nologfile", false, "")
	fs.SetOutput(ioutil.Discard)
	fs.Usage = func() {}
	return fs
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(defaultHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// resolveTier sets the percentage from the tier flags.  When more than one
// tier is given they are checked in the order -low, -mid, -high and the first
// one set wins.
func (c *config) resolveTier() error {
	if c.Low {
		c.tiers = append(c.tiers, "low")
	}
	if c.Mid {
		c.tiers = append(c.tiers, "mid")
	}
	if c.High {
		c.tiers = append(c.tiers, "high")
	}

	switch {
	case c.Low:
		c.percentage = memory.TierLow
	case c.Mid:
		c.percentage = memory.TierMid
	case c.High:
		c.percentage = memory.TierHigh
	default:
		return &memory.ConfigurationError{
			Reason: "must specify one of -low, -mid, or -high",
		}
	}
	return nil
}

// loadConfig initializes and parses the config using a config file and command
// line options.  Usage is written to w when requested or when no tier was
// selected.
//
// The configuration proceeds as follows:
// 	1) Start with a default config with sane settings
// 	2) Pre-parse the command line to check for an alternative config file
// 	3) Load configuration file overwriting defaults with any specified options
// 	4) Parse CLI options and overwrite/add any specified options
//
// Command line options always take precedence.
func loadConfig(args []string, w io.Writer) (*config, error) {
	// Default config.
	cfg := &config{}
	fs := cfg.FlagSet()

	// Determine config file to read (if any).  When -C is the first
	// parameter, configure flags from the specified config file rather than
	// using the application default path.  Otherwise the default config
	// will be parsed if the file exists.
	if len(args) >= 2 && args[0] == "-C" {
		err := cfg.Config.Set(args[1])
		if err != nil {
			return nil, &memory.ConfigurationError{
				Reason: fmt.Sprintf("invalid value %q for flag -C",
					args[1]),
				Err: err,
			}
		}
		args = args[2:]
	} else if fileExists(defaultConfigFile) {
		err := cfg.Config.Set(defaultConfigFile)
		if err != nil {
			return nil, &memory.ConfigurationError{
				Reason: "default config file",
				Err:    err,
			}
		}
	}

	err := fs.Parse(args)
	if err == flag.ErrHelp {
		usage(w)
		return nil, err
	}
	if err != nil {
		usage(w)
		return nil, &memory.ConfigurationError{
			Reason: "invalid arguments",
			Err:    err,
		}
	}
	if fs.NArg() != 0 {
		usage(w)
		return nil, &memory.ConfigurationError{
			Reason: fmt.Sprintf("unexpected arguments: %v", fs.Args()),
		}
	}

	// Version does not require a tier.
	if cfg.ShowVersion {
		return cfg, nil
	}

	if err := cfg.resolveTier(); err != nil {
		usage(w)
		return nil, err
	}

	cfg.mode = load.ModeDynamic
	if cfg.Static {
		cfg.mode = load.ModeStatic
	}

	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	return cfg, nil
}
