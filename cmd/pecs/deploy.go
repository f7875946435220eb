package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
)

func cmdDeploy(args []string) {
	fs := flag.NewFlagSet("deploy", flag.ExitOnError)
	opts := registerCommon(fs)
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: pecs deploy [flags] <tag>")
		os.Exit(1)
	}
	tag := fs.Arg(0)

	ctx := context.Background()
	client := opts.client(ctx)

	if err := client.Deploy(ctx, tag); err != nil {
		fatal(err)
	}
	fmt.Printf("Deployed tag %s\n", tag)
}

func cmdRollback(args []string) {
	fs := flag.NewFlagSet("rollback", flag.ExitOnError)
	opts := registerCommon(fs)
	fs.Parse(args)

	rel := -1
	if fs.NArg() > 0 {
		n, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			fatal(fmt.Errorf("relative revision must be an integer, got %q", fs.Arg(0)))
		}
		rel = n
	}

	ctx := context.Background()
	client := opts.client(ctx)

	if err := client.Rollback(ctx, rel); err != nil {
		fatal(err)
	}
	fmt.Printf("Rolled back %d revision(s)\n", -rel)
}
