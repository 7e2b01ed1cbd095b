package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/geekhirusha/chatapp/internal/app"
	"github.com/geekhirusha/chatapp/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "config file path (overrides ~/.chatapp/config.toml)")
	flag.Parse()

	fxApp := fx.New(
		fx.NopLogger,
		app.Module(app.Params{ConfigPath: *configFlag}),
		fx.Provide(tui.NewApp),
		fx.Invoke(runTUI),
	)

	fxApp.Run()

	if err := fxApp.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI ties tview's blocking event loop to the fx lifecycle: the app
// shuts down when the user quits the TUI, and stopping fx stops the TUI.
func runTUI(lc fx.Lifecycle, ui *tui.App, sd fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := ui.Run(); err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
				}
				_ = sd.Shutdown()
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			ui.Stop()
			return nil
		},
	})
}
