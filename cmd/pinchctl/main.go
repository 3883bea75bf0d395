package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ayusman/pinchctl/cmd/pinchctl/commands"
	"github.com/ayusman/pinchctl/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := commands.Root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
