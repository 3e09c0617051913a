package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kiegroup/kie-remote-tests/config"
	"github.com/kiegroup/kie-remote-tests/framework/itest"
)

type commandParams struct {
	config         config.Config
	filters        itest.RegexFilters
	skipFrom       string
	recordFailures string
	debug          bool
	debugAll       bool
	jUnitFile      string
}

func (c *commandParams) Read(args []string) bool {
	c.config = config.Default()
	if path := config.FileFromArgs(args[1:]); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return false
		}
		c.config = loaded
	}

	fs := flag.NewFlagSet("", flag.ExitOnError)
	c.config.RegisterFlags(fs)
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.StringVar(&c.skipFrom, "skip-from", "",
		"skip the tests listed in this results store (defaults to -results-store)")
	fs.StringVar(&c.recordFailures, "record-failures", "",
		"record this run's failures in this results store (defaults to -results-store)")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if err := c.config.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if c.skipFrom == "" {
		c.skipFrom = c.config.ResultsStore
	}
	if c.recordFailures == "" {
		c.recordFailures = c.config.ResultsStore
	}
	return true
}
