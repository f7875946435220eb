package pecs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
)

// ServiceEnv is the environment of one service's container, labeled for
// display.
type ServiceEnv struct {
	Service   string
	Family    string
	Container string
	Env       map[string]string
}

// EnvList returns the environment of every targeted service.
func (c *Client) EnvList(ctx context.Context) ([]ServiceEnv, error) {
	services, defs, err := c.currentDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	envs := make([]ServiceEnv, 0, len(defs))
	for i, def := range defs {
		if len(def.ContainerDefinitions) == 0 {
			return nil, fmt.Errorf("task definition %s has no container definitions", aws.ToString(def.Family))
		}
		container := def.ContainerDefinitions[0]
		envs = append(envs, ServiceEnv{
			Service:   aws.ToString(services[i].ServiceName),
			Family:    aws.ToString(def.Family),
			Container: aws.ToString(container.Name),
			Env:       envMap(container.Environment),
		})
	}
	return envs, nil
}

// EnvGet returns the value of key in the first targeted service's
// environment. Multi-service get is not supported; only the first service is
// read.
func (c *Client) EnvGet(ctx context.Context, key string) (string, bool, error) {
	envs, err := c.EnvList(ctx)
	if err != nil {
		return "", false, err
	}
	value, ok := envs[0].Env[key]
	return value, ok, nil
}

// EnvSet appends key=value to every targeted service's environment and rolls
// the change out. An existing entry with the same name is not deduplicated;
// the appended value wins at runtime.
func (c *Client) EnvSet(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("environment variable name is required")
	}
	return c.rolloutEnv(ctx, func(env []ecstypes.KeyValuePair) []ecstypes.KeyValuePair {
		return append(env, ecstypes.KeyValuePair{
			Name:  aws.String(key),
			Value: aws.String(value),
		})
	})
}

// EnvUnset removes every entry named key from every targeted service's
// environment and rolls the change out.
func (c *Client) EnvUnset(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("environment variable name is required")
	}
	return c.rolloutEnv(ctx, func(env []ecstypes.KeyValuePair) []ecstypes.KeyValuePair {
		kept := make([]ecstypes.KeyValuePair, 0, len(env))
		for _, kv := range env {
			if aws.ToString(kv.Name) != key {
				kept = append(kept, kv)
			}
		}
		return kept
	})
}

// rolloutEnv applies an environment transformation to every targeted
// service's definition, registers the new revisions, and rolls them out.
func (c *Client) rolloutEnv(ctx context.Context, transform func([]ecstypes.KeyValuePair) []ecstypes.KeyValuePair) error {
	services, defs, err := c.currentDefinitions(ctx)
	if err != nil {
		return err
	}

	inputs := make([]*awsecs.RegisterTaskDefinitionInput, len(defs))
	for i, def := range defs {
		input := registerInput(def)
		if err := requireSingleContainer(input); err != nil {
			return err
		}
		env := transform(input.ContainerDefinitions[0].Environment)
		if err := withEnvironment(input, env); err != nil {
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

func (c *Client) currentDefinitions(ctx context.Context) ([]ecstypes.Service, []*ecstypes.TaskDefinition, error) {
	services, err := c.DescribeServices(ctx, &c.config.Services)
	if err != nil {
		return nil, nil, err
	}
	defs, err := c.readDefinitions(ctx, services)
	if err != nil {
		return nil, nil, err
	}
	return services, defs, nil
}

// envMap flattens an environment list to a name->value map. Order is
// irrelevant; for duplicate names the last entry wins, matching what the
// container runtime does.
func envMap(env []ecstypes.KeyValuePair) map[string]string {
	m := make(map[string]string, len(env))
	for _, kv := range env {
		m[aws.ToString(kv.Name)] = aws.ToString(kv.Value)
	}
	return m
}
