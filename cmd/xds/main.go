package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rcarmo/xds/internal/config"
	"github.com/rcarmo/xds/internal/logging"
	"github.com/rcarmo/xds/internal/metrics"
	"github.com/rcarmo/xds/internal/protocol/xproto"
	"github.com/rcarmo/xds/internal/server"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "xds: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configFile string
		display    int
		mode       string
		width      int
		height     int
		logLevel   string
		noTCP      bool
		socketDir  string
		wsAddr     string
		debugAddr  string
		authPolicy string
		cookieFile string
	)

	cmd := &cobra.Command{
		Use:   "xds",
		Short: "A network-transparent display server",
		Long: `xds serves a display over the core window-system protocol.

Clients connect over the display's unix socket, TCP port 6000+n, or an
optional WebSocket bridge, negotiate byte order and protocol version,
and drive windows, pixmaps, and the rest of the resource registry
through fixed binary requests.

Configuration is layered: built-in defaults, then a YAML file, then
XDS_* environment variables, then these flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := config.LoadOptions{
				ConfigFile: configFile,
				Mode:       mode,
				LogLevel:   logLevel,
				DisableTCP: noTCP,
				SocketDir:  socketDir,
				WSAddr:     wsAddr,
				DebugAddr:  debugAddr,
				AuthPolicy: authPolicy,
				CookieFile: cookieFile,
			}

			// Zero is a meaningful value for these, so only an explicit
			// flag overrides the file and environment layers.
			if cmd.Flags().Changed("display") {
				opts.Display = &display
			}
			if cmd.Flags().Changed("width") {
				opts.Width = &width
			}
			if cmd.Flags().Changed("height") {
				opts.Height = &height
			}

			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "path to a YAML configuration file")
	cmd.Flags().IntVarP(&display, "display", "d", 0, "display number (unix socket X<n>, TCP port 6000+n)")
	cmd.Flags().StringVar(&mode, "mode", "", "display backend: headless, virtual, or native")
	cmd.Flags().IntVar(&width, "width", 0, "root window width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "root window height in pixels")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, or error")
	cmd.Flags().BoolVar(&noTCP, "no-tcp", false, "serve the unix socket only")
	cmd.Flags().StringVar(&socketDir, "socket-dir", "", "directory for the display's unix socket")
	cmd.Flags().StringVar(&wsAddr, "ws-addr", "", "listen address for the WebSocket endpoint")
	cmd.Flags().StringVar(&debugAddr, "debug-addr", "", "listen address for the debug and metrics endpoint")
	cmd.Flags().StringVar(&authPolicy, "auth", "", "connection authorization policy: none or cookie")
	cmd.Flags().StringVar(&cookieFile, "cookie-file", "", "cookie file for the cookie policy")

	cmd.AddCommand(versionCmd())

	return cmd
}

func runServe(opts config.LoadOptions) error {
	cfg, err := config.LoadWithOverrides(opts)
	if err != nil {
		return err
	}

	logging.SetLevelFromString(cfg.Logging.Level)
	logging.SetFormatFromString(cfg.Logging.Format)

	srv, err := server.New(cfg, server.WithMetrics(metrics.New()))
	if err != nil {
		return err
	}

	if err := srv.Listen(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("xds %s serving display :%d", version, cfg.Display.Number)

	return srv.Run(ctx)
}

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Println(version)
				return
			}

			fmt.Printf("xds %s\n", version)
			fmt.Printf("  commit:   %s\n", commit)
			fmt.Printf("  built:    %s\n", date)
			fmt.Printf("  go:       %s\n", runtime.Version())
			fmt.Printf("  protocol: %d.%d\n", xproto.ProtocolMajor, xproto.ProtocolMinor)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")

	return cmd
}
