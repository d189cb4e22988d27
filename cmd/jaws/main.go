package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/businessperformancetuning/jaws/host"
	"github.com/businessperformancetuning/jaws/load"
	"github.com/businessperformancetuning/jaws/memory"
	"github.com/davecgh/go-spew/spew"
)

// describe classifies err for the operator.
func describe(err error) string {
	var (
		ce *memory.ConfigurationError
		ae *memory.AllocationError
		xe *load.AccessError
	)
	switch {
	case errors.As(err, &ce):
		return fmt.Sprintf("Configuration error: %v", ce)
	case errors.As(err, &ae):
		return fmt.Sprintf("Error creating buffer: %v", ae)
	case errors.As(err, &xe):
		return fmt.Sprintf("Memory access error: %v", xe)
	}
	return fmt.Sprintf("Error: %v", err)
}

// exitCode returns the process exit status for err.
func exitCode(err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 1
}

func _main() error {
	cfg, err := loadConfig(os.Args[1:], os.Stdout)
	if err != nil {
		return err
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	if cfg.ShowVersion {
		fmt.Printf("%s version %s (Go version %s %s/%s)\n", appName,
			versionString(), runtime.Version(), runtime.GOOS,
			runtime.GOARCH)
		return nil
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		return nil
	}

	// Initialize log rotation.  After log rotation has been initialized,
	// the logger variables may be used.
	if !cfg.NoLogFile {
		err = initLogRotator(filepath.Join(cfg.LogDir,
			defaultLogFilename))
		if err != nil {
			return err
		}
		defer logRotator.Close()
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return &memory.ConfigurationError{Reason: "debuglevel", Err: err}
	}

	log.Infof("Version %s (Go version %s %s/%s)", versionString(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	log.Tracef("config: %v", spew.Sdump(cfg))
	if len(cfg.tiers) > 1 {
		log.Warnf("Multiple tiers specified %v, using %v%%", cfg.tiers,
			cfg.percentage)
	}

	h, err := host.New()
	if err != nil {
		return fmt.Errorf("could not open proc filesystem: %w", err)
	}

	// Setup OS signals before the region exists so that an early
	// interrupt is observed as well.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	j := newJaws(cfg, h, os.Stdout)
	err = j.execute(context.Background(), sigs)
	if err != nil {
		return err
	}

	log.Infof("Exiting")

	return nil
}

func main() {
	err := _main()
	if code := exitCode(err); code != 0 {
		fmt.Fprintf(os.Stderr, "%v\n", describe(err))
		os.Exit(code)
	}
}
