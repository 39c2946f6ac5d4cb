package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gi8lino/stopwatch/internal/app"
)

var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	if err := app.Run(context.Background(), Version, Commit, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err) // nolint:errcheck
		os.Exit(1)
	}
}
