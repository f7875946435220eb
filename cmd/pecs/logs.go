package main

import (
	"context"
	"flag"
	"fmt"
	"time"
)

func cmdLogs(args []string) {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)
	opts := registerCommon(fs)
	tail := fs.Int("tail", 100, "max events per service")
	since := fs.Duration("since", time.Hour, "how far back to fetch events")
	fs.Parse(args)

	ctx := context.Background()
	client := opts.client(ctx)

	events, err := client.ServiceLogs(ctx, int32(*tail), *since)
	if err != nil {
		fatal(err)
	}
	if len(events) == 0 {
		fmt.Println("No log events")
		return
	}
	for _, e := range events {
		fmt.Printf("%s  %-24s  %s\n", e.Timestamp.Format(time.RFC3339), e.Service, e.Message)
	}
}
