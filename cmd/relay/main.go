package main

import (
	"context"
	"fmt"
	"os"

	"github.com/reshetovitsme/discord-telegram-relay/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
