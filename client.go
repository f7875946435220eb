// Package pecs rolls ECS services onto new immutable task definition
// revisions: deploys (image tag swaps), rollbacks to earlier revisions, and
// environment variable changes, each followed by a wait for the services to
// stabilize.
package pecs

import (
	"github.com/rs/zerolog"
)

// Client drives the ECS control plane for a single cluster.
type Client struct {
	config Config
	ecs    ECSAPI
	logs   LogsAPI
	ec2    EC2API
	logger zerolog.Logger
}

// New creates a pecs client.
func New(config Config, awsClients *AWSClients, logger zerolog.Logger) *Client {
	return &Client{
		config: config,
		ecs:    awsClients.ECS,
		logs:   awsClients.CloudWatch,
		ec2:    awsClients.EC2,
		logger: logger,
	}
}
