package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func cmdInstances(args []string) {
	fs := flag.NewFlagSet("instances", flag.ExitOnError)
	opts := registerCommon(fs)
	fs.Parse(args)

	ctx := context.Background()
	client := opts.client(ctx)

	if fs.NArg() > 0 {
		if fs.Arg(0) != "update-agent" {
			fmt.Fprintln(os.Stderr, "Usage: pecs instances [flags] [update-agent]")
			os.Exit(1)
		}
		if err := client.UpdateAgents(ctx); err != nil {
			fatal(err)
		}
		return
	}

	instances, err := client.ContainerInstances(ctx)
	if err != nil {
		fatal(err)
	}
	if len(instances) == 0 {
		fmt.Println("No container instances (Fargate-only cluster?)")
		return
	}

	fmt.Printf("%-36s  %-20s  %-12s  %-15s  %-8s  %-8s  %9s  %s\n",
		"INSTANCE", "EC2 INSTANCE", "TYPE", "PRIVATE IP", "STATUS", "AGENT", "CONNECTED", "RUNNING")
	for _, ci := range instances {
		fmt.Printf("%-36s  %-20s  %-12s  %-15s  %-8s  %-8s  %9t  %d\n",
			ci.Name, ci.EC2InstanceID, ci.InstanceType, ci.PrivateIP,
			ci.Status, ci.AgentVersion, ci.AgentConnected, ci.RunningTasks)
	}
}
