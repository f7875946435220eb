package pecs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	"golang.org/x/sync/errgroup"
)

// updateServices points each service at its target definition ARN (parallel
// lists, same order) and blocks until the cluster reports them stable.
// Updates already issued before a failure are not rolled back.
func (c *Client) updateServices(ctx context.Context, names []string, defARNs []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		arn := defARNs[i]
		g.Go(func() error {
			_, err := c.ecs.UpdateService(gctx, &awsecs.UpdateServiceInput{
				Cluster:        aws.String(c.config.Cluster),
				Service:        aws.String(name),
				TaskDefinition: aws.String(arn),
			})
			if err != nil {
				return fmt.Errorf("update service %s: %w", name, err)
			}
			c.logger.Info().Str("service", name).Str("taskDefinition", arn).Msg("service updated")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return c.waitStable(ctx, names)
}

// waitStable blocks until every named service reports a steady state, or the
// configured stabilization timeout elapses.
func (c *Client) waitStable(ctx context.Context, names []string) error {
	c.logger.Info().Strs("services", names).Msg("waiting for services to stabilize")

	waiter := awsecs.NewServicesStableWaiter(c.ecs)
	err := waiter.Wait(ctx, &awsecs.DescribeServicesInput{
		Cluster:  aws.String(c.config.Cluster),
		Services: names,
	}, c.config.StabilizeTimeout)
	if err != nil {
		return fmt.Errorf("services did not stabilize: %w", err)
	}

	c.logger.Info().Strs("services", names).Msg("services stable")
	return nil
}
