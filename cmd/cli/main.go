package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/skillhub/internal/client/cli"
	"github.com/dmitrijs2005/skillhub/internal/client/config"
)

func main() {
	cfg := config.LoadConfig(os.Args[1:])
	root := cli.NewRootCmd(cfg, cli.OpenSession)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
