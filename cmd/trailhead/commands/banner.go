package commands

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/mariposa-trails/trailhead/config"
	"github.com/mariposa-trails/trailhead/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(cfg *config.Config) {
	info := version.Get()

	pterm.DefaultBox.
		WithTitle("Trailhead").
		WithTitleTopCenter().
		Println("Mariposa Trails API")

	pterm.Info.Printf("Version:  %s (commit %s)\n", info.Version, info.Short())
	pterm.Info.Printf("Built:    %s\n", info.BuildTime)
	pterm.Info.Printf("Port:     %d\n", cfg.Server.Port)
	pterm.Info.Printf("Store:    %s\n", cfg.Store.Path)
	if cfg.Store.Repo != "" {
		pterm.Info.Printf("Upstream: %s\n", cfg.Store.Repo)
	}

	fmt.Println()
	pterm.Println(pterm.LightBlue("Press Ctrl+C to stop"))
	fmt.Println()
}
