package cli

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/wraith/internal/config"
	"github.com/rileyhilliard/wraith/internal/errors"
	"github.com/rileyhilliard/wraith/internal/probe"
	"github.com/rileyhilliard/wraith/internal/server"
)

var (
	probeDeepFlag    bool
	probeTimeoutFlag string
)

var probeCmd = &cobra.Command{
	Use:   "probe <server|host:port>",
	Short: "One-shot reachability check",
	Long: `Probe a server once and print the result.

The argument is either a server name from the inventory or a raw host:port
address. --deep performs a full SSH handshake instead of a TCP dial.

Examples:
  wraith probe web-1
  wraith probe 10.0.0.5:22 --deep`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProbe(args[0])
	},
}

func init() {
	probeCmd.Flags().BoolVar(&probeDeepFlag, "deep", false, "perform a full SSH handshake")
	probeCmd.Flags().StringVar(&probeTimeoutFlag, "timeout", "", "probe timeout (e.g. 3s)")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(target string) error {
	timeout := probe.DefaultTimeout
	if probeTimeoutFlag != "" {
		d, err := time.ParseDuration(probeTimeoutFlag)
		if err != nil || d <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' doesn't look like a valid timeout", probeTimeoutFlag),
				"Try something like 3s or 500ms")
		}
		timeout = d
	}

	address, rec, err := resolveProbeTarget(target)
	if err != nil {
		return err
	}

	fn := probe.TCP
	if probeDeepFlag {
		fn = probe.Deep
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	res := fn(ctx, address, timeout)

	if res.Reachable {
		fmt.Printf("✓ %s reachable in %dms\n", address, res.Latency.Milliseconds())
	} else {
		kind := "unreachable"
		if res.Err != nil {
			kind = res.Err.Kind.String()
		}
		fmt.Printf("✗ %s: %s\n", address, kind)
	}
	if rec != nil {
		fmt.Printf("  security: %s\n", server.Assess(rec.Auth, rec.Port))
	}
	if !res.Reachable {
		return errors.New(errors.ErrProbe, "probe failed", "")
	}
	return nil
}

// resolveProbeTarget maps the argument to a dial address: inventory name
// first, then a literal host:port, then a bare host on the default port.
func resolveProbeTarget(target string) (string, *server.Record, error) {
	cfg, _, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return "", nil, err
	}
	if idx := findServer(cfg, target); idx >= 0 {
		rec := cfg.Servers[idx].ToRecord()
		return rec.Address(), &rec, nil
	}

	rec := server.Record{Host: target, Port: server.DefaultSSHPort}
	if host, port, splitErr := splitHostPort(target); splitErr == nil {
		rec.Host = host
		rec.Port = port
	}
	return rec.Address(), nil, nil
}

func splitHostPort(s string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	return host, port, nil
}
