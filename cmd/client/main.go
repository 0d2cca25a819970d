package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/filedrop/internal/client/cli"
	"github.com/dmitrijs2005/filedrop/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg, os.Stdin, os.Stdout)

	app.Run(ctx)
}
