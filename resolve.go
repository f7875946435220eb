package pecs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
)

// Clusters lists the names of all clusters visible to the caller.
func (c *Client) Clusters(ctx context.Context) ([]string, error) {
	result, err := c.ecs.ListClusters(ctx, &awsecs.ListClustersInput{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(result.ClusterArns))
	for _, arn := range result.ClusterArns {
		names = append(names, ResourceName(arn))
	}
	return names, nil
}

// ResolveServices fills an empty service name list with every service in the
// cluster, up to one page of PageSize results. The resolved names are written
// back through names; callers holding the slice observe the mutation.
func (c *Client) ResolveServices(ctx context.Context, names *[]string) ([]string, error) {
	if len(*names) > 0 {
		return *names, nil
	}

	result, err := c.ecs.ListServices(ctx, &awsecs.ListServicesInput{
		Cluster:    aws.String(c.config.Cluster),
		MaxResults: aws.Int32(c.config.PageSize),
	})
	if err != nil {
		return nil, err
	}

	resolved := make([]string, 0, len(result.ServiceArns))
	for _, arn := range result.ServiceArns {
		resolved = append(resolved, ResourceName(arn))
	}
	*names = resolved
	return resolved, nil
}

// DescribeServices resolves the configured service list and describes each
// service. Entries the API reports under Failures abort the call.
func (c *Client) DescribeServices(ctx context.Context, names *[]string) ([]ecstypes.Service, error) {
	resolved, err := c.ResolveServices(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, fmt.Errorf("no services found in cluster %s", c.config.Cluster)
	}

	result, err := c.ecs.DescribeServices(ctx, &awsecs.DescribeServicesInput{
		Cluster:  aws.String(c.config.Cluster),
		Services: resolved,
	})
	if err != nil {
		return nil, err
	}
	for _, f := range result.Failures {
		return nil, fmt.Errorf("describe %s: %s", aws.ToString(f.Arn), aws.ToString(f.Reason))
	}
	return result.Services, nil
}
