// Command kie-war builds the test WAR: the workbench distribution with the locally built remote API
// jars and the data-service classes, plus the test kjar published to the local repository.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"

	"github.com/kiegroup/kie-remote-tests/config"
	"github.com/kiegroup/kie-remote-tests/war"
)

func main() {
	cfg := config.Default()
	if path := config.FileFromArgs(os.Args[1:]); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	flags := flag.NewFlagSet("kie-war", flag.ExitOnError)
	cfg.RegisterFlags(flags)
	flags.StringVar(&cfg.War.Classifier, "classifier", cfg.War.Classifier, "distribution classifier, such as eap6_4 or tomcat7")
	flags.StringVar(&cfg.War.ProjectVersion, "project-version", cfg.War.ProjectVersion,
		"version of the distribution and the remote API jars")
	flags.StringVar(&cfg.War.Output, "o", cfg.War.Output, "where to write the WAR")
	dataServiceDir := flags.String("data-service", "",
		"class directory holding the data-service package, instead of the bundled one")
	skipKjar := flags.Bool("skip-kjar", false, "do not build and publish the test kjar")
	verbose := flags.Bool("v", false, "log each step")
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "", 0)
	if !*verbose {
		logger.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var dataService fs.FS
	if *dataServiceDir != "" {
		dataService = os.DirFS(*dataServiceDir)
	}
	if err := run(ctx, cfg, dataService, *skipKjar, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1) //nolint:gocritic
	}
}

func run(ctx context.Context, cfg config.Config, dataService fs.FS, skipKjar bool, logger *log.Logger) error {
	local, err := cfg.LocalRepository()
	if err != nil {
		return err
	}
	remotes, err := cfg.RemoteRepositories(logger)
	if err != nil {
		return err
	}
	archive, err := war.CreateTestWar(ctx, war.Options{
		Classifier:     cfg.War.Classifier,
		ProjectVersion: cfg.War.ProjectVersion,
		Repository:     local,
		Publish:        remotes,
		Unit:           cfg.DeploymentUnit(),
		DataService:    dataService,
		SkipKjar:       skipKjar,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	if err := archive.ExportTo(cfg.War.Output); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d entries)\n", cfg.War.Output, len(archive.Names()))
	return nil
}
