package main

import (
	"context"
	_ "embed" // this is required in order for go:embed to work
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/kiegroup/kie-remote-tests/data"
	"github.com/kiegroup/kie-remote-tests/framework"
	"github.com/kiegroup/kie-remote-tests/framework/harness"
	"github.com/kiegroup/kie-remote-tests/framework/itest"
	"github.com/kiegroup/kie-remote-tests/kietests"
	"github.com/kiegroup/kie-remote-tests/kjar"
	"github.com/kiegroup/kie-remote-tests/mavenrepo"
	"github.com/kiegroup/kie-remote-tests/resultstore"
)

const (
	statusPath   = "rest/deployment"
	storeTimeout = time.Second * 30
)

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func main() {
	fmt.Printf("kie-remote-tests v%s\n", strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	results, err := run(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !results.OK() {
		os.Exit(1)
	}
}

func run(params commandParams) (*itest.Results, error) {
	if params.skipFrom != "" {
		if err := loadSuppressions(&params); err != nil {
			return nil, err
		}
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	cfg := params.config
	h, err := harness.NewTestHarness(
		harness.Config{
			ServerURL:          cfg.Server.URL,
			User:               cfg.Server.User,
			Password:           cfg.Server.Password,
			StatusPath:         statusPath,
			StatusQueryTimeout: cfg.Server.StatusTimeout,
			Capabilities:       cfg.ServerCapabilities(),
			CallbackHost:       cfg.Callback.Host,
			CallbackPort:       cfg.Callback.Port,
		},
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = h.Close() }()

	if cfg.Deployment.Publish || cfg.Repository.ServeLocal {
		if err := prepareRepositories(h, params, framework.LoggerWithPrefix(mainDebugLogger, "[maven] ")); err != nil {
			return nil, err
		}
	}

	var testLogger itest.TestLogger
	consoleLogger := itest.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	if params.jUnitFile == "" {
		testLogger = consoleLogger
	} else {
		testLogger = &itest.MultiTestLogger{Loggers: []itest.TestLogger{
			consoleLogger,
			itest.NewJUnitTestLogger(params.jUnitFile, "KIE remote tests", cfg.Properties()),
		}}
	}

	started := time.Now()
	results := kietests.RunKieTestSuite(h, cfg, params.filters, testLogger)

	fmt.Println()
	if err := testLogger.EndLog(results); err != nil {
		return nil, fmt.Errorf("error writing log: %w", err)
	}

	if params.recordFailures != "" {
		if err := recordFailures(params, resultstore.NewRunRecord(cfg.Server.URL, started, results)); err != nil {
			return nil, err
		}
	}

	return &results, nil
}

// prepareRepositories publishes the test kjar and exposes the local repository to the server, as
// configured.
func prepareRepositories(h *harness.TestHarness, params commandParams, logger framework.Logger) error {
	cfg := params.config
	local, target, err := cfg.PublishRepositories(logger)
	if err != nil {
		return err
	}
	if cfg.Deployment.Publish {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		module, err := kjar.DeployKjarToMaven(ctx, target, cfg.DeploymentUnit(), data.BPMNResources(),
			data.BPMNTestDirectory, logger)
		if err != nil {
			return err
		}
		fmt.Printf("Published kjar %s with %d processes\n", cfg.DeploymentUnit().Artifact(), len(module.ProcessIDs))
	}
	if cfg.Repository.ServeLocal {
		endpoint, err := h.NewCallbackEndpoint(mavenrepo.NewHandler(local), logger,
			harness.CallbackEndpointDescription("maven repository"))
		if err != nil {
			return err
		}
		fmt.Printf("Serving %s at %s\n", local.Root(), endpoint.BaseURL())
	}
	return nil
}

func loadSuppressions(params *commandParams) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	store, err := resultstore.Open(ctx, params.skipFrom)
	if err != nil {
		return fmt.Errorf("cannot open results store: %w", err)
	}
	defer func() { _ = store.Close() }()
	ids, err := store.LoadSuppressions(ctx)
	if err != nil {
		return fmt.Errorf("cannot load suppressions: %w", err)
	}
	for _, id := range ids {
		if err := params.filters.MustNotMatch.AddLiteral(id); err != nil {
			return fmt.Errorf("cannot parse suppression: %w", err)
		}
	}
	if len(ids) != 0 {
		fmt.Printf("Skipping %d suppressed test(s) from %s\n", len(ids), params.skipFrom)
	}
	return nil
}

func recordFailures(params commandParams, record resultstore.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	store, err := resultstore.Open(ctx, params.recordFailures)
	if err != nil {
		return fmt.Errorf("cannot open results store: %w", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.RecordRun(ctx, record); err != nil {
		return fmt.Errorf("cannot record failures: %w", err)
	}
	fmt.Printf("Recorded run %s: %d failure(s)\n", record.ID, len(record.Failures))
	return nil
}
