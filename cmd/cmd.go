// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand initializes config and the local search cache
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file and initialize the search cache",
		Action: r.Setup,
	}
}

// authCommand runs the browser OAuth2 flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authenticate with Spotify using OAuth2",
		Action: r.Auth,
	}
}

// deviceCommand manages the playback daemon lifecycle
func deviceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "device",
		Aliases: []string{"daemon"},
		Usage:   "Manage the spotifyd playback daemon",
		Commands: []*cli.Command{
			{
				Name:   "install",
				Usage:  "Download the daemon binary for this platform",
				Action: r.DeviceInstall,
			},
			{
				Name:   "start",
				Usage:  "Start the daemon as a background process",
				Action: r.DeviceStart,
			},
			{
				Name:   "stop",
				Usage:  "Stop a running daemon",
				Action: r.DeviceStop,
			},
			{
				Name:   "status",
				Usage:  "Show platform detection and daemon state",
				Action: r.DeviceStatus,
			},
			{
				Name:   "config",
				Usage:  "Write the daemon config tuned to this platform",
				Action: r.DeviceConfig,
			},
		},
	}
}

// searchCommand looks up playlists by name
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search playlists by name",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "export",
				Usage: "Write results to a file (csv, md, txt, json)",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Export file path",
			},
		},
		Action: r.Search,
	}
}

// playCommand starts playlist playback on the managed device
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Play the best matching playlist on the managed device",
		ArgsUsage: "<playlist name>",
		Action:    r.Play,
	}
}

// runCommand starts the interactive session
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"interactive"},
		Usage:   "Start the interactive playback session",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stop-daemon",
				Usage: "Stop the daemon when the session ends",
			},
		},
		Action: r.Session,
	}
}
