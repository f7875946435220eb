package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
)

func cmdConfigure(args []string) {
	fs := flag.NewFlagSet("configure", flag.ExitOnError)
	opts := registerCommon(fs)
	fs.Parse(args)

	ctx := context.Background()
	client := opts.client(ctx)
	rest := fs.Args()

	if len(rest) == 0 {
		envs, err := client.EnvList(ctx)
		if err != nil {
			fatal(err)
		}
		labeled := len(envs) > 1
		for _, e := range envs {
			if labeled {
				fmt.Printf("%s (%s/%s):\n", e.Service, e.Family, e.Container)
			}
			keys := make([]string, 0, len(e.Env))
			for k := range e.Env {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if labeled {
					fmt.Printf("  %s=%s\n", k, e.Env[k])
				} else {
					fmt.Printf("%s=%s\n", k, e.Env[k])
				}
			}
		}
		return
	}

	switch rest[0] {
	case "get":
		if len(rest) != 2 {
			configureUsage()
			os.Exit(1)
		}
		value, ok, err := client.EnvGet(ctx, rest[1])
		if err != nil {
			fatal(err)
		}
		if ok {
			fmt.Println(value)
		}
	case "set":
		if len(rest) != 3 {
			configureUsage()
			os.Exit(1)
		}
		if err := client.EnvSet(ctx, rest[1], rest[2]); err != nil {
			fatal(err)
		}
		fmt.Printf("Set %s\n", rest[1])
	case "unset":
		if len(rest) != 2 {
			configureUsage()
			os.Exit(1)
		}
		if err := client.EnvUnset(ctx, rest[1]); err != nil {
			fatal(err)
		}
		fmt.Printf("Unset %s\n", rest[1])
	default:
		fatal(fmt.Errorf("invalid configure subcommand %q", rest[0]))
	}
}

func configureUsage() {
	fmt.Fprintln(os.Stderr, `Usage: pecs configure [flags] [subcommand]

Subcommands:
  (none)           Print environment variables for every targeted service
  get <key>        Print the value of key (first targeted service only)
  set <key> <val>  Set key on every targeted service and roll out
  unset <key>      Remove key from every targeted service and roll out`)
}
