package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/noahsilas/pecs"
	"github.com/rs/zerolog"
)

// commonOpts are the flags shared by every command. Defaults come from the
// environment (AWS_REGION, PECS_CLUSTER, PECS_SERVICES, ...).
type commonOpts struct {
	region   *string
	cluster  *string
	services *string
	pageSize *int
	timeout  *time.Duration
	endpoint *string
	logLevel *string
}

func registerCommon(fs *flag.FlagSet) *commonOpts {
	env := pecs.ConfigFromEnv()
	return &commonOpts{
		region:   fs.String("region", env.Region, "AWS region"),
		cluster:  fs.String("cluster", env.Cluster, "ECS cluster name"),
		services: fs.String("services", strings.Join(env.Services, ","), "comma-separated service names (default: all services in the cluster)"),
		pageSize: fs.Int("page-size", int(env.PageSize), "max services fetched when resolving all services"),
		timeout:  fs.Duration("timeout", env.StabilizeTimeout, "how long to wait for services to stabilize"),
		endpoint: fs.String("endpoint-url", env.EndpointURL, "custom API endpoint (simulator mode)"),
		logLevel: fs.String("log-level", "info", "log level (debug, info, warn, error)"),
	}
}

func (o *commonOpts) client(ctx context.Context) *pecs.Client {
	level, err := zerolog.ParseLevel(*o.logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Str("component", "pecs").
		Logger()

	config := pecs.Config{
		Region:           *o.region,
		Cluster:          *o.cluster,
		Services:         splitCSV(*o.services),
		PageSize:         int32(*o.pageSize),
		StabilizeTimeout: *o.timeout,
		EndpointURL:      *o.endpoint,
	}
	if err := config.Validate(); err != nil {
		fatal(err)
	}

	awsClients, err := pecs.NewAWSClients(ctx, config.Region, config.EndpointURL)
	if err != nil {
		fatal(err)
	}
	return pecs.New(config, awsClients, logger)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
