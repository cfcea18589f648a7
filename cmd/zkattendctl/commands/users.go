package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zkattend/zkattend"
)

func usersCmd() *cobra.Command {
	var (
		port           int
		connectTimeout time.Duration
		rwTimeout      time.Duration
		outputFormat   string
	)

	cmd := &cobra.Command{
		Use:   "users <host>[:port]",
		Short: "List a device's enrolled users",
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

			log.WithField("host", host).WithField("port", resolvedPort).Info("listing users")

			users, err := zkattend.Users(cmd.Context(), host, resolvedPort, opts...)
			if err != nil {
				return fmt.Errorf("users %s:%d: %w", host, resolvedPort, err)
			}

			out, err := formatUsersResult(users, outputFormat)
			if err != nil {
				return fmt.Errorf("format users result: %w", err)
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
