package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/tebeka/atexit"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	atexit.Register(stop)

	cli := NewCli(os.Stdin, os.Stdout, os.Stderr)
	atexit.Register(cli.Close)

	atexit.Exit(cli.Execute(ctx, os.Args[1:]))
}
