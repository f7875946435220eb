package pecs

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"golang.org/x/sync/errgroup"
)

// Services resolves and describes the targeted services.
func (c *Client) Services(ctx context.Context) ([]ecstypes.Service, error) {
	return c.DescribeServices(ctx, &c.config.Services)
}

// Deploy registers a new revision of every targeted service's task definition
// with the image retagged, then rolls the services onto the new revisions and
// waits for them to stabilize.
func (c *Client) Deploy(ctx context.Context, tag string) error {
	if tag == "" {
		return fmt.Errorf("image tag is required")
	}

	services, err := c.DescribeServices(ctx, &c.config.Services)
	if err != nil {
		return err
	}
	defs, err := c.readDefinitions(ctx, services)
	if err != nil {
		return err
	}

	inputs := make([]*awsecs.RegisterTaskDefinitionInput, len(defs))
	for i, def := range defs {
		input := registerInput(def)
		if err := withImageTag(input, tag); err != nil {
			return err
		}
		inputs[i] = input
	}

	arns, err := c.registerDefinitions(ctx, inputs)
	if err != nil {
		return err
	}
	return c.updateServices(ctx, serviceNames(services), arns)
}

// Rollback points every targeted service at an earlier revision of its task
// definition family, rel revisions back from the current one (rel must be
// negative; the default CLI value is -1). Earlier revisions are immutable and
// never deleted by pecs, so the target is re-referenced, not re-registered.
func (c *Client) Rollback(ctx context.Context, rel int) error {
	if rel >= 0 {
		return fmt.Errorf("relative revision must be negative, got %d", rel)
	}

	services, err := c.DescribeServices(ctx, &c.config.Services)
	if err != nil {
		return err
	}
	defs, err := c.readDefinitions(ctx, services)
	if err != nil {
		return err
	}

	targets := make([]string, len(defs))
	for i, def := range defs {
		target, err := relativeRevision(def, rel)
		if err != nil {
			return err
		}
		targets[i] = target
	}

	if err := c.verifyDefinitions(ctx, targets); err != nil {
		return err
	}
	return c.updateServices(ctx, serviceNames(services), targets)
}

// relativeRevision re-strings a definition ARN with the revision shifted by
// rel, e.g. ".../task-definition/web:5" with rel -1 -> ".../task-definition/web:4".
func relativeRevision(def *ecstypes.TaskDefinition, rel int) (string, error) {
	target := int(def.Revision) + rel
	if target < 1 {
		return "", fmt.Errorf("family %s has no revision %d", aws.ToString(def.Family), target)
	}
	arn := aws.ToString(def.TaskDefinitionArn)
	i := strings.LastIndex(arn, ":")
	if i < 0 {
		return "", fmt.Errorf("malformed task definition ARN %q", arn)
	}
	return fmt.Sprintf("%s:%d", arn[:i], target), nil
}

// verifyDefinitions checks that every target revision actually exists before
// any service is touched.
func (c *Client) verifyDefinitions(ctx context.Context, arns []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, arn := range arns {
		g.Go(func() error {
			_, err := c.ecs.DescribeTaskDefinition(ctx, &awsecs.DescribeTaskDefinitionInput{
				TaskDefinition: aws.String(arn),
			})
			if err != nil {
				return fmt.Errorf("target revision %s does not exist: %w", arn, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func serviceNames(services []ecstypes.Service) []string {
	names := make([]string, 0, len(services))
	for _, svc := range services {
		names = append(names, aws.ToString(svc.ServiceName))
	}
	return names
}
