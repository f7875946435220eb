package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "clusters":
		cmdClusters(os.Args[2:])
	case "services":
		cmdServices(os.Args[2:])
	case "deploy":
		cmdDeploy(os.Args[2:])
	case "rollback":
		cmdRollback(os.Args[2:])
	case "configure":
		cmdConfigure(os.Args[2:])
	case "instances":
		cmdInstances(os.Args[2:])
	case "logs":
		cmdLogs(os.Args[2:])
	case "version":
		fmt.Println("pecs v0.1.0")
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: pecs <command> [flags] [args]

Commands:
  clusters   List ECS clusters
  services   List services in a cluster
  deploy     Deploy a new image tag to services
  rollback   Roll services back to an earlier revision
  configure  Show or change service environment variables
  instances  List container instances / update the ECS agent
  logs       Show recent service logs
  version    Print version

Run "pecs <command> -h" for command flags.`)
}
