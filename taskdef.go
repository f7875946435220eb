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

// readDefinitions fetches the active task definition of each service, in
// parallel. Output order matches input order; the first failure cancels the
// remaining fetches and aborts the batch.
func (c *Client) readDefinitions(ctx context.Context, services []ecstypes.Service) ([]*ecstypes.TaskDefinition, error) {
	defs := make([]*ecstypes.TaskDefinition, len(services))
	g, ctx := errgroup.WithContext(ctx)
	for i, svc := range services {
		g.Go(func() error {
			result, err := c.ecs.DescribeTaskDefinition(ctx, &awsecs.DescribeTaskDefinitionInput{
				TaskDefinition: svc.TaskDefinition,
			})
			if err != nil {
				return fmt.Errorf("describe task definition for %s: %w", aws.ToString(svc.ServiceName), err)
			}
			defs[i] = result.TaskDefinition
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return defs, nil
}

// registerInput copies the fields the registration API accepts out of an
// existing definition. Server-populated fields (ARN, revision, status,
// timestamps) have no counterpart on the input type and are dropped here.
func registerInput(def *ecstypes.TaskDefinition) *awsecs.RegisterTaskDefinitionInput {
	containers := make([]ecstypes.ContainerDefinition, len(def.ContainerDefinitions))
	copy(containers, def.ContainerDefinitions)
	return &awsecs.RegisterTaskDefinitionInput{
		Family:                  def.Family,
		ContainerDefinitions:    containers,
		Volumes:                 def.Volumes,
		TaskRoleArn:             def.TaskRoleArn,
		ExecutionRoleArn:        def.ExecutionRoleArn,
		NetworkMode:             def.NetworkMode,
		PidMode:                 def.PidMode,
		IpcMode:                 def.IpcMode,
		Cpu:                     def.Cpu,
		Memory:                  def.Memory,
		PlacementConstraints:    def.PlacementConstraints,
		RequiresCompatibilities: def.RequiresCompatibilities,
		ProxyConfiguration:      def.ProxyConfiguration,
		EphemeralStorage:        def.EphemeralStorage,
		RuntimePlatform:         def.RuntimePlatform,
	}
}

// withImageTag rewrites the container image reference to carry the given tag.
// Definitions with more than one container are rejected: applying a tag to
// only the first container would be a silent partial update.
func withImageTag(input *awsecs.RegisterTaskDefinitionInput, tag string) error {
	if err := requireSingleContainer(input); err != nil {
		return err
	}
	container := &input.ContainerDefinitions[0]
	image := aws.ToString(container.Image)
	container.Image = aws.String(retagImage(image, tag))
	return nil
}

// withEnvironment replaces the container environment wholesale.
func withEnvironment(input *awsecs.RegisterTaskDefinitionInput, env []ecstypes.KeyValuePair) error {
	if err := requireSingleContainer(input); err != nil {
		return err
	}
	input.ContainerDefinitions[0].Environment = env
	return nil
}

func requireSingleContainer(input *awsecs.RegisterTaskDefinitionInput) error {
	if n := len(input.ContainerDefinitions); n != 1 {
		return fmt.Errorf("task definition %s has %d container definitions; exactly one is required",
			aws.ToString(input.Family), n)
	}
	return nil
}

// retagImage swaps the tag segment of an image reference. The tag separator
// is a colon after the last slash, so registry ports are left alone.
func retagImage(image, tag string) string {
	base := image
	if i := strings.LastIndex(image, ":"); i > strings.LastIndex(image, "/") {
		base = image[:i]
	}
	return base + ":" + tag
}

// registerDefinitions registers each payload in parallel and returns the new
// immutable definition ARNs in input order. All-or-nothing: any failure
// cancels the batch.
func (c *Client) registerDefinitions(ctx context.Context, inputs []*awsecs.RegisterTaskDefinitionInput) ([]string, error) {
	arns := make([]string, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	for i, input := range inputs {
		g.Go(func() error {
			result, err := c.ecs.RegisterTaskDefinition(ctx, input)
			if err != nil {
				return fmt.Errorf("register %s: %w", aws.ToString(input.Family), err)
			}
			arns[i] = aws.ToString(result.TaskDefinition.TaskDefinitionArn)
			c.logger.Info().
				Str("family", aws.ToString(result.TaskDefinition.Family)).
				Int32("revision", result.TaskDefinition.Revision).
				Msg("registered task definition")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return arns, nil
}
