package pecs

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"golang.org/x/sync/errgroup"
)

// ContainerInstance is a cluster container instance joined with its backing
// EC2 instance.
type ContainerInstance struct {
	Name           string
	EC2InstanceID  string
	InstanceType   string
	PrivateIP      string
	Status         string
	AgentVersion   string
	AgentConnected bool
	RunningTasks   int32
}

// ContainerInstances lists the cluster's container instances, decorated with
// instance type and private IP from EC2. Fargate-only clusters return an
// empty list.
func (c *Client) ContainerInstances(ctx context.Context) ([]ContainerInstance, error) {
	arns, err := c.listContainerInstances(ctx)
	if err != nil {
		return nil, err
	}
	if len(arns) == 0 {
		return nil, nil
	}

	result, err := c.ecs.DescribeContainerInstances(ctx, &awsecs.DescribeContainerInstancesInput{
		Cluster:            aws.String(c.config.Cluster),
		ContainerInstances: arns,
	})
	if err != nil {
		return nil, err
	}
	for _, f := range result.Failures {
		return nil, fmt.Errorf("describe %s: %s", aws.ToString(f.Arn), aws.ToString(f.Reason))
	}

	instances := make([]ContainerInstance, 0, len(result.ContainerInstances))
	ec2IDs := make([]string, 0, len(result.ContainerInstances))
	for _, ci := range result.ContainerInstances {
		instance := ContainerInstance{
			Name:           ResourceName(aws.ToString(ci.ContainerInstanceArn)),
			EC2InstanceID:  aws.ToString(ci.Ec2InstanceId),
			Status:         aws.ToString(ci.Status),
			AgentConnected: ci.AgentConnected,
			RunningTasks:   ci.RunningTasksCount,
		}
		if ci.VersionInfo != nil {
			instance.AgentVersion = aws.ToString(ci.VersionInfo.AgentVersion)
		}
		if instance.EC2InstanceID != "" {
			ec2IDs = append(ec2IDs, instance.EC2InstanceID)
		}
		instances = append(instances, instance)
	}

	if err := c.joinEC2(ctx, instances, ec2IDs); err != nil {
		// EC2 decoration is best-effort: the listing is still useful without it.
		c.logger.Warn().Err(err).Msg("failed to describe EC2 instances")
	}
	return instances, nil
}

func (c *Client) listContainerInstances(ctx context.Context) ([]string, error) {
	result, err := c.ecs.ListContainerInstances(ctx, &awsecs.ListContainerInstancesInput{
		Cluster:    aws.String(c.config.Cluster),
		MaxResults: aws.Int32(c.config.PageSize),
	})
	if err != nil {
		return nil, err
	}
	return result.ContainerInstanceArns, nil
}

func (c *Client) joinEC2(ctx context.Context, instances []ContainerInstance, ec2IDs []string) error {
	if len(ec2IDs) == 0 {
		return nil
	}
	result, err := c.ec2.DescribeInstances(ctx, &awsec2.DescribeInstancesInput{
		InstanceIds: ec2IDs,
	})
	if err != nil {
		return err
	}

	byID := map[string]struct{ instanceType, privateIP string }{}
	for _, r := range result.Reservations {
		for _, inst := range r.Instances {
			byID[aws.ToString(inst.InstanceId)] = struct{ instanceType, privateIP string }{
				string(inst.InstanceType),
				aws.ToString(inst.PrivateIpAddress),
			}
		}
	}
	for i := range instances {
		if info, ok := byID[instances[i].EC2InstanceID]; ok {
			instances[i].InstanceType = info.instanceType
			instances[i].PrivateIP = info.privateIP
		}
	}
	return nil
}

// UpdateAgents requests an ECS agent update on every container instance, in
// parallel. Instances already running the latest agent are skipped.
func (c *Client) UpdateAgents(ctx context.Context) error {
	arns, err := c.listContainerInstances(ctx)
	if err != nil {
		return err
	}
	if len(arns) == 0 {
		return fmt.Errorf("no container instances in cluster %s", c.config.Cluster)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, arn := range arns {
		name := ResourceName(arn)
		g.Go(func() error {
			_, err := c.ecs.UpdateContainerAgent(ctx, &awsecs.UpdateContainerAgentInput{
				Cluster:           aws.String(c.config.Cluster),
				ContainerInstance: aws.String(arn),
			})
			var noUpdate *ecstypes.NoUpdateAvailableException
			if errors.As(err, &noUpdate) {
				c.logger.Info().Str("instance", name).Msg("agent already up to date")
				return nil
			}
			if err != nil {
				return fmt.Errorf("update agent on %s: %w", name, err)
			}
			c.logger.Info().Str("instance", name).Msg("agent update requested")
			return nil
		})
	}
	return g.Wait()
}
