package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kailas-cloud/askdb/internal/transport/cli"
)

func main() {
	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
