package config

import (
	"flag"
	"strings"
)

// ConfigFileFlag names the flag that selects the configuration file.
const ConfigFileFlag = "config"

// FileFromArgs finds the value of -config in command-line arguments before the flags are parsed,
// so that the file can be loaded and the remaining flags applied on top of it.
func FileFromArgs(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		if !strings.HasPrefix(a, "-") {
			continue
		}
		name := strings.TrimPrefix(strings.TrimPrefix(a, "-"), "-")
		if v, ok := strings.CutPrefix(name, ConfigFileFlag+"="); ok {
			return v
		}
		if name == ConfigFileFlag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// RegisterFlags binds flags to the fields of c. Values already in c are the defaults shown in
// usage, and any flag given on the command line replaces them.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.String(ConfigFileFlag, "", "YAML configuration file")
	fs.StringVar(&c.Server.URL, "url", c.Server.URL, "base URL of the workbench")
	fs.StringVar(&c.Server.User, "user", c.Server.User, "user for REST requests")
	fs.StringVar(&c.Server.Password, "password", c.Server.Password, "password for REST requests")
	fs.DurationVar(&c.Server.Timeout, "timeout", c.Server.Timeout, "timeout for each REST request")
	fs.DurationVar(&c.Server.StatusTimeout, "status-timeout", c.Server.StatusTimeout,
		"how long to wait for the server to respond at startup")

	fs.StringVar(&c.Deployment.GroupID, "group-id", c.Deployment.GroupID, "group id of the test kjar")
	fs.StringVar(&c.Deployment.ArtifactID, "artifact-id", c.Deployment.ArtifactID, "artifact id of the test kjar")
	fs.StringVar(&c.Deployment.Version, "version", c.Deployment.Version, "version of the test kjar")
	fs.StringVar(&c.Deployment.KBase, "kbase", c.Deployment.KBase, "kbase name of the test deployment")
	fs.StringVar(&c.Deployment.KSession, "ksession", c.Deployment.KSession, "ksession name of the test deployment")
	fs.StringVar(&c.Deployment.Strategy, "strategy", c.Deployment.Strategy,
		"runtime strategy: SINGLETON, PER_REQUEST or PER_PROCESS_INSTANCE")
	fs.IntVar(&c.Deployment.PollRetries, "poll-retries", c.Deployment.PollRetries,
		"how many times to poll a deployment job")
	fs.DurationVar(&c.Deployment.PollInterval, "poll-interval", c.Deployment.PollInterval,
		"how long to wait between deployment polls")
	fs.BoolVar(&c.Deployment.Publish, "publish-kjar", c.Deployment.Publish,
		"build the test kjar and publish it before running the tests")

	fs.StringVar(&c.Tasks.User, "task-user", c.Tasks.User, "user who owns the test human tasks")
	fs.StringVar(&c.Tasks.Language, "task-language", c.Tasks.Language, "language for task queries")
	fs.Var(newListFlag(&c.MediaTypes), "media-type", "media type(s) to test: xml, json (comma-separated or repeated)")
	fs.Var(newListFlag(&c.Capabilities), "capability", "optional server capabilities (comma-separated or repeated)")

	fs.StringVar(&c.Callback.Host, "host", c.Callback.Host, "external hostname of the test harness")
	fs.IntVar(&c.Callback.Port, "port", c.Callback.Port, "port for callback endpoints, 0 for none")

	fs.StringVar(&c.Repository.Local, "local-repo", c.Repository.Local, "local Maven repository directory")
	fs.BoolVar(&c.Repository.ServeLocal, "serve-local-repo", c.Repository.ServeLocal,
		"serve the local Maven repository on a callback endpoint")
	fs.StringVar(&c.Repository.HTTP.URL, "remote-repo", c.Repository.HTTP.URL, "remote Maven repository URL to publish to")
	fs.StringVar(&c.Repository.S3.Bucket, "s3-bucket", c.Repository.S3.Bucket, "S3 bucket to publish to")
	fs.StringVar(&c.Repository.S3.Prefix, "s3-prefix", c.Repository.S3.Prefix, "key prefix within the S3 bucket")

	fs.StringVar(&c.ResultsStore, "results-store", c.ResultsStore,
		"where suppressions and run records are kept: a file path, redis://, consul:// or dynamodb://")
}

// listFlag replaces the default list on first use, then appends.
type listFlag struct {
	target *[]string
	set    bool
}

func newListFlag(target *[]string) *listFlag {
	return &listFlag{target: target}
}

func (l *listFlag) String() string {
	if l == nil || l.target == nil {
		return ""
	}
	return strings.Join(*l.target, ",")
}

func (l *listFlag) Set(value string) error {
	if !l.set {
		*l.target = nil
		l.set = true
	}
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			*l.target = append(*l.target, s)
		}
	}
	return nil
}
