package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ledgerdash/ledgerdash/internal/app"
	"github.com/ledgerdash/ledgerdash/internal/config"
	"github.com/ledgerdash/ledgerdash/internal/devserver"
)

type devFlags struct {
	port        int
	host        string
	mode        string
	strictPort  bool
	openBrowser bool
	noReload    bool
}

func devCmd() *cobra.Command {
	var flags devFlags

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server.

Every page request is resolved against the dashboard's route table;
the shell receives the matched view and parameters, or a null route
when nothing matches. Static assets are served from the static
directory and connected pages reload when it changes.

The port is strict by default: if it is taken the server exits
instead of moving to another port.

Examples:
  ledgerdash dev
  ledgerdash dev --port=1421
  ledgerdash dev --strict-port=false --open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyDevFlags(cmd, cfg, flags)
			return runDev(cmd, cfg)
		},
	}

	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "Port to run on (default from ledgerdash.json)")
	cmd.Flags().StringVarP(&flags.host, "host", "H", "", "Host to bind to (default from ledgerdash.json)")
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "Mode selecting the .env.<mode> files")
	cmd.Flags().BoolVar(&flags.strictPort, "strict-port", true, "Fail instead of trying the next port")
	cmd.Flags().BoolVarP(&flags.openBrowser, "open", "o", false, "Open browser on start")
	cmd.Flags().BoolVar(&flags.noReload, "no-reload", false, "Disable live reload")

	return cmd
}

// loadConfig discovers the project configuration from the working directory.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Discover(wd)
}

// applyDevFlags overrides cfg with the flags set on the command line.
func applyDevFlags(cmd *cobra.Command, cfg *config.Config, flags devFlags) {
	if flags.port > 0 {
		cfg.Dev.Port = flags.port
	}
	if flags.host != "" {
		cfg.Dev.Host = flags.host
	}
	if flags.mode != "" {
		cfg.Mode = flags.mode
	}
	if cmd.Flags().Changed("strict-port") {
		cfg.Dev.StrictPort = flags.strictPort
	}
	if flags.openBrowser {
		cfg.Dev.OpenBrowser = true
	}
	if flags.noReload {
		cfg.Dev.HotReload = false
	}
}

func runDev(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()

	server, err := devserver.New(devserver.Options{
		Config: cfg,
		Table:  app.Table(),
		OnReload: func(clients int) {
			success(out, "Reloaded %d page(s)", clients)
		},
	})
	if err != nil {
		return err
	}

	if cfg.ClearScreen {
		fmt.Fprint(out, "\033[H\033[2J")
	}
	printBanner(out)
	fmt.Fprintln(out, "  dev")
	fmt.Fprintln(out)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		select {
		case <-server.Ready():
		case <-ctx.Done():
			return
		}

		url := "http://" + net.JoinHostPort(cfg.Dev.Host, strconv.Itoa(boundPort(server)))
		success(out, "Ready on %s", url)
		info(out, "Mode:    %s", cfg.Mode)
		info(out, "Static:  %s", cfg.StaticPath())
		info(out, "Env:     %d client variable(s)", server.Env().Len())
		if cfg.Metrics.Enabled {
			info(out, "Metrics: %s%s", url, cfg.Metrics.Path)
		}
		if !cfg.Dev.HotReload {
			warn(out, "Live reload disabled")
		}
		fmt.Fprintln(out)

		if cfg.Dev.OpenBrowser {
			openURL(url)
		}
	}()

	err = server.Start(ctx)
	if ctx.Err() != nil {
		fmt.Fprintln(out, "\n  Shutting down...")
	}
	return err
}

func boundPort(server *devserver.Server) int {
	if addr, ok := server.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd

	switch {
	case commandExists("xdg-open"):
		cmd = exec.Command("xdg-open", url)
	case commandExists("open"):
		cmd = exec.Command("open", url)
	case commandExists("start"):
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}

	cmd.Start()
}

// commandExists checks if a command exists in PATH.
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
