package pecs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/rs/zerolog"
)

const testAccount = "arn:aws:ecs:us-east-1:123456789012"

// fakeECS is an in-memory stand-in for the ECS control plane. Services point
// at task definition ARNs; registrations mint strictly increasing revisions
// per family, and described services always report a single stable
// deployment.
type fakeECS struct {
	mu sync.Mutex

	clusterArns []string
	serviceArns []string
	services    map[string]*ecstypes.Service        // keyed by service name
	taskDefs    map[string]*ecstypes.TaskDefinition // keyed by ARN and family:revision
	revisions   map[string]int32

	registerErr func(*awsecs.RegisterTaskDefinitionInput) error
	agentErr    func(instanceARN string) error

	instanceArns       []string
	containerInstances []ecstypes.ContainerInstance

	listServiceCalls int
	registerCalls    int
	updateCalls      int
	describeTDCalls  int
	agentCalls       int
}

func newFakeECS() *fakeECS {
	return &fakeECS{
		services:  map[string]*ecstypes.Service{},
		taskDefs:  map[string]*ecstypes.TaskDefinition{},
		revisions: map[string]int32{},
	}
}

// addService registers a task definition at the given revision and creates a
// stable service pointing at it.
func (f *fakeECS) addService(name, family string, revision int32, image string, env []ecstypes.KeyValuePair) {
	arn := fmt.Sprintf("%s:task-definition/%s:%d", testAccount, family, revision)
	def := &ecstypes.TaskDefinition{
		TaskDefinitionArn: aws.String(arn),
		Family:            aws.String(family),
		Revision:          revision,
		Status:            ecstypes.TaskDefinitionStatusActive,
		Cpu:               aws.String("256"),
		Memory:            aws.String("512"),
		ContainerDefinitions: []ecstypes.ContainerDefinition{{
			Name:        aws.String("main"),
			Image:       aws.String(image),
			Environment: env,
		}},
	}
	f.taskDefs[arn] = def
	f.taskDefs[fmt.Sprintf("%s:%d", family, revision)] = def
	if f.revisions[family] < revision {
		f.revisions[family] = revision
	}

	if _, exists := f.services[name]; !exists {
		f.serviceArns = append(f.serviceArns, fmt.Sprintf("%s:service/test/%s", testAccount, name))
	}
	f.services[name] = &ecstypes.Service{
		ServiceName:    aws.String(name),
		ServiceArn:     aws.String(fmt.Sprintf("%s:service/test/%s", testAccount, name)),
		Status:         aws.String("ACTIVE"),
		TaskDefinition: aws.String(arn),
		RunningCount:   1,
		DesiredCount:   1,
		Deployments:    []ecstypes.Deployment{{Status: aws.String("PRIMARY")}},
	}
}

func (f *fakeECS) currentDef(name string) *ecstypes.TaskDefinition {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.taskDefs[aws.ToString(f.services[name].TaskDefinition)]
}

func (f *fakeECS) ListClusters(ctx context.Context, params *awsecs.ListClustersInput, optFns ...func(*awsecs.Options)) (*awsecs.ListClustersOutput, error) {
	return &awsecs.ListClustersOutput{ClusterArns: f.clusterArns}, nil
}

func (f *fakeECS) ListServices(ctx context.Context, params *awsecs.ListServicesInput, optFns ...func(*awsecs.Options)) (*awsecs.ListServicesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listServiceCalls++
	arns := f.serviceArns
	if params.MaxResults != nil && int(*params.MaxResults) < len(arns) {
		arns = arns[:*params.MaxResults]
	}
	return &awsecs.ListServicesOutput{ServiceArns: arns}, nil
}

func (f *fakeECS) DescribeServices(ctx context.Context, params *awsecs.DescribeServicesInput, optFns ...func(*awsecs.Options)) (*awsecs.DescribeServicesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &awsecs.DescribeServicesOutput{}
	for _, name := range params.Services {
		svc, ok := f.services[ResourceName(name)]
		if !ok {
			out.Failures = append(out.Failures, ecstypes.Failure{
				Arn:    aws.String(name),
				Reason: aws.String("MISSING"),
			})
			continue
		}
		out.Services = append(out.Services, *svc)
	}
	return out, nil
}

func (f *fakeECS) DescribeTaskDefinition(ctx context.Context, params *awsecs.DescribeTaskDefinitionInput, optFns ...func(*awsecs.Options)) (*awsecs.DescribeTaskDefinitionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.describeTDCalls++
	def, ok := f.taskDefs[aws.ToString(params.TaskDefinition)]
	if !ok {
		return nil, fmt.Errorf("Unable to describe task definition: %s", aws.ToString(params.TaskDefinition))
	}
	return &awsecs.DescribeTaskDefinitionOutput{TaskDefinition: def}, nil
}

func (f *fakeECS) RegisterTaskDefinition(ctx context.Context, params *awsecs.RegisterTaskDefinitionInput, optFns ...func(*awsecs.Options)) (*awsecs.RegisterTaskDefinitionOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	if f.registerErr != nil {
		if err := f.registerErr(params); err != nil {
			return nil, err
		}
	}
	family := aws.ToString(params.Family)
	revision := f.revisions[family] + 1
	f.revisions[family] = revision
	arn := fmt.Sprintf("%s:task-definition/%s:%d", testAccount, family, revision)
	def := &ecstypes.TaskDefinition{
		TaskDefinitionArn:    aws.String(arn),
		Family:               params.Family,
		Revision:             revision,
		Status:               ecstypes.TaskDefinitionStatusActive,
		Cpu:                  params.Cpu,
		Memory:               params.Memory,
		ContainerDefinitions: params.ContainerDefinitions,
		Volumes:              params.Volumes,
	}
	f.taskDefs[arn] = def
	f.taskDefs[fmt.Sprintf("%s:%d", family, revision)] = def
	return &awsecs.RegisterTaskDefinitionOutput{TaskDefinition: def}, nil
}

func (f *fakeECS) UpdateService(ctx context.Context, params *awsecs.UpdateServiceInput, optFns ...func(*awsecs.Options)) (*awsecs.UpdateServiceOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	name := aws.ToString(params.Service)
	svc, ok := f.services[name]
	if !ok {
		return nil, fmt.Errorf("service not found: %s", name)
	}
	target := aws.ToString(params.TaskDefinition)
	def, ok := f.taskDefs[target]
	if !ok && strings.Contains(target, "/") {
		def, ok = f.taskDefs[ResourceName(target)]
	}
	if !ok {
		return nil, fmt.Errorf("task definition not found: %s", target)
	}
	svc.TaskDefinition = def.TaskDefinitionArn
	return &awsecs.UpdateServiceOutput{Service: svc}, nil
}

func (f *fakeECS) ListContainerInstances(ctx context.Context, params *awsecs.ListContainerInstancesInput, optFns ...func(*awsecs.Options)) (*awsecs.ListContainerInstancesOutput, error) {
	return &awsecs.ListContainerInstancesOutput{ContainerInstanceArns: f.instanceArns}, nil
}

func (f *fakeECS) DescribeContainerInstances(ctx context.Context, params *awsecs.DescribeContainerInstancesInput, optFns ...func(*awsecs.Options)) (*awsecs.DescribeContainerInstancesOutput, error) {
	return &awsecs.DescribeContainerInstancesOutput{ContainerInstances: f.containerInstances}, nil
}

func (f *fakeECS) UpdateContainerAgent(ctx context.Context, params *awsecs.UpdateContainerAgentInput, optFns ...func(*awsecs.Options)) (*awsecs.UpdateContainerAgentOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.agentCalls++
	if f.agentErr != nil {
		if err := f.agentErr(aws.ToString(params.ContainerInstance)); err != nil {
			return nil, err
		}
	}
	return &awsecs.UpdateContainerAgentOutput{}, nil
}

type fakeLogs struct {
	events []awsLogEvent
	calls  []*cloudwatchlogs.FilterLogEventsInput
}

type awsLogEvent struct {
	stream  string
	ts      int64
	message string
}

func (f *fakeLogs) FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error) {
	f.calls = append(f.calls, params)
	out := &cloudwatchlogs.FilterLogEventsOutput{}
	for _, e := range f.events {
		out.Events = append(out.Events, cwltypes.FilteredLogEvent{
			LogStreamName: aws.String(e.stream),
			Timestamp:     aws.Int64(e.ts),
			Message:       aws.String(e.message),
		})
	}
	return out, nil
}

type fakeEC2 struct {
	instances []ec2types.Instance
}

func (f *fakeEC2) DescribeInstances(ctx context.Context, params *awsec2.DescribeInstancesInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeInstancesOutput, error) {
	return &awsec2.DescribeInstancesOutput{
		Reservations: []ec2types.Reservation{{Instances: f.instances}},
	}, nil
}

// testClient wires a client to fakes with a short stabilization timeout.
func testClient(fake *fakeECS) *Client {
	return &Client{
		config: Config{
			Region:           "us-east-1",
			Cluster:          "test",
			PageSize:         100,
			StabilizeTimeout: time.Minute,
		},
		ecs:    fake,
		logs:   &fakeLogs{},
		ec2:    &fakeEC2{},
		logger: zerolog.Nop(),
	}
}

func env(pairs ...string) []ecstypes.KeyValuePair {
	var kvs []ecstypes.KeyValuePair
	for i := 0; i+1 < len(pairs); i += 2 {
		kvs = append(kvs, ecstypes.KeyValuePair{
			Name:  aws.String(pairs[i]),
			Value: aws.String(pairs[i+1]),
		})
	}
	return kvs
}
