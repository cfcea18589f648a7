package commands

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/zkattend/zkattend"
)

func fetchCmd() *cobra.Command {
	var (
		port           int
		connectTimeout time.Duration
		rwTimeout      time.Duration
		outputFormat   string
	)

	cmd := &cobra.Command{
		Use:   "fetch <host>[:port]",
		Short: "Fetch a device's users and attendance log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, resolvedPort := splitHostPort(args[0], port)

			opts := []zkattend.Option{
				zkattend.WithConnectTimeout(connectTimeout),
				zkattend.WithReadWriteTimeout(rwTimeout),
			}
			if cfg.Password != 0 {
				opts = append(opts, zkattend.WithPassword(cfg.Password))
			}

			log.WithField("host", host).WithField("port", resolvedPort).Info("fetching device")

			resp, err := zkattend.Fetch(cmd.Context(), host, resolvedPort, opts...)
			if err != nil {
				return fmt.Errorf("fetch %s:%d: %w", host, resolvedPort, err)
			}

			out, err := formatFetchResult(resp, outputFormat)
			if err != nil {
				return fmt.Errorf("format fetch result: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&port, "port", 4370, "device port (overridden by a host:port argument)")
	flags.DurationVar(&connectTimeout, "connect-timeout", 5*time.Second, "dial timeout")
	flags.DurationVar(&rwTimeout, "rw-timeout", 10*time.Second, "per-command read/write timeout")
	flags.StringVar(&outputFormat, "format", "table", "output format: table, json")

	return cmd
}

// splitHostPort splits "host:port" if present, otherwise returns host with
// the given default port.
func splitHostPort(hostArg string, defaultPort int) (string, int) {
	if h, p, err := net.SplitHostPort(hostArg); err == nil {
		if n, err := strconv.Atoi(p); err == nil {
			return h, n
		}
	}
	return hostArg, defaultPort
}
