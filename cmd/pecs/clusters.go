package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/noahsilas/pecs"
)

func cmdClusters(args []string) {
	fs := flag.NewFlagSet("clusters", flag.ExitOnError)
	opts := registerCommon(fs)
	fs.Parse(args)

	ctx := context.Background()
	client := opts.client(ctx)

	names, err := client.Clusters(ctx)
	if err != nil {
		fatal(err)
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func cmdServices(args []string) {
	fs := flag.NewFlagSet("services", flag.ExitOnError)
	opts := registerCommon(fs)
	fs.Parse(args)

	ctx := context.Background()
	client := opts.client(ctx)

	services, err := client.Services(ctx)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("%-32s  %-10s  %8s  %8s  %s\n", "SERVICE", "STATUS", "RUNNING", "DESIRED", "TASK DEFINITION")
	for _, svc := range services {
		fmt.Printf("%-32s  %-10s  %8d  %8d  %s\n",
			aws.ToString(svc.ServiceName),
			aws.ToString(svc.Status),
			svc.RunningCount,
			svc.DesiredCount,
			pecs.ResourceName(aws.ToString(svc.TaskDefinition)))
	}
}
