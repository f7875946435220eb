package pecs

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
)

// LogEvent is one log line from a service's awslogs stream.
type LogEvent struct {
	Service   string
	Stream    string
	Timestamp time.Time
	Message   string
}

// ServiceLogs fetches the most recent log events for every targeted service,
// reading the awslogs driver configuration out of each service's active task
// definition. Services whose containers do not log to CloudWatch are an
// error.
func (c *Client) ServiceLogs(ctx context.Context, tail int32, since time.Duration) ([]LogEvent, error) {
	services, defs, err := c.currentDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	var events []LogEvent
	start := time.Now().Add(-since).UnixMilli()
	for i, def := range defs {
		name := aws.ToString(services[i].ServiceName)
		group, prefix, err := awslogsConfig(def)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		input := &cloudwatchlogs.FilterLogEventsInput{
			LogGroupName: aws.String(group),
			Limit:        aws.Int32(tail),
			StartTime:    aws.Int64(start),
		}
		if prefix != "" {
			input.LogStreamNamePrefix = aws.String(prefix)
		}
		result, err := c.logs.FilterLogEvents(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("fetch logs for %s: %w", name, err)
		}

		for _, e := range result.Events {
			events = append(events, LogEvent{
				Service:   name,
				Stream:    aws.ToString(e.LogStreamName),
				Timestamp: time.UnixMilli(aws.ToInt64(e.Timestamp)).UTC(),
				Message:   aws.ToString(e.Message),
			})
		}
	}
	return events, nil
}

// awslogsConfig extracts the log group and stream prefix from the first
// container's log configuration.
func awslogsConfig(def *ecstypes.TaskDefinition) (group, prefix string, err error) {
	if len(def.ContainerDefinitions) == 0 {
		return "", "", fmt.Errorf("task definition %s has no container definitions", aws.ToString(def.Family))
	}
	container := def.ContainerDefinitions[0]
	lc := container.LogConfiguration
	if lc == nil || lc.LogDriver != ecstypes.LogDriverAwslogs {
		return "", "", fmt.Errorf("container %s does not use the awslogs driver", aws.ToString(container.Name))
	}
	group = lc.Options["awslogs-group"]
	if group == "" {
		return "", "", fmt.Errorf("container %s has no awslogs-group option", aws.ToString(container.Name))
	}
	if p := lc.Options["awslogs-stream-prefix"]; p != "" {
		prefix = fmt.Sprintf("%s/%s/", p, aws.ToString(container.Name))
	}
	return group, prefix, nil
}
