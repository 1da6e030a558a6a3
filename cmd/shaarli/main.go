package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaarli/shaarli-client-go/internal/cli"
)

var version = "0.4.0"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, cancelling request...\n")
		cancel()
	}()

	code := cli.Run(ctx, version, os.Args[1:], os.Stdout, os.Stderr)
	signal.Stop(sigChan)
	cancel()
	os.Exit(code)
}
