// Package cli implements the interactive FileDrop client: a small REPL for
// dropping text and files, listing entries and fetching download links.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/filedrop/internal/client/api"
	"github.com/dmitrijs2005/filedrop/internal/client/config"
)

type App struct {
	config *config.Config
	api    *api.Client
	http   *http.Client

	in  io.Reader
	out io.Writer
}

func NewApp(cfg *config.Config, in io.Reader, out io.Writer) *App {
	httpClient := &http.Client{}
	return &App{
		config: cfg,
		api:    api.NewClient(cfg.ServerBaseURL, httpClient),
		http:   httpClient,
		in:     in,
		out:    out,
	}
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
