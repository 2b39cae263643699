// Package main is the pixelpaint application entrypoint.
package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sb810/pixel-paint-challenge/internal"
	"github.com/sb810/pixel-paint-challenge/internal/app/apps"
	"github.com/sb810/pixel-paint-challenge/internal/app/cfg"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/log"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CLI command definitions.
var (
	logger logrus.FieldLogger = logrus.StandardLogger()

	rootCmd = &cobra.Command{
		Use: "pixelpaint",
		RunE: func(*cobra.Command, []string) error {
			return nil
		},
	}

	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Starts a wall server.",
		RunE:  runCmd,
	}

	clientCmd = &cobra.Command{
		Use:   "client [x y color ...]",
		Short: "Starts a headless wall client, optionally painting cells.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args)%3 != 0 {
				return errors.New("paint arguments must be (x y color) triples")
			}
			for i := 0; i < len(args); i += 3 {
				if _, err := strconv.ParseUint(args[i], 10, 32); err != nil {
					return errors.Wrap(err, "parse x coordinate argument failed")
				}
				if _, err := strconv.ParseUint(args[i+1], 10, 32); err != nil {
					return errors.Wrap(err, "parse y coordinate argument failed")
				}
			}
			return nil
		},
		RunE: runCmd,
	}
)

func newApp(_ context.Context, cmd *cobra.Command, args []string) (apps.App, []string, error) {
	switch cmd.Name() {
	case "server":
		app, err := apps.NewServerApp(cfg.PortFromEnv(), cfg.CanvasFromEnv())
		if err != nil {
			return nil, nil, errors.Wrap(err, "new server app failed")
		}
		return app, args, nil
	case "client":
		app, err := apps.NewClientApp(cfg.PortFromEnv())
		if err != nil {
			return nil, nil, errors.Wrap(err, "new client app failed")
		}
		return app, args, nil
	default:
		return nil, nil, fmt.Errorf("unknown command: %s", cmd.Name())
	}
}

func runCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := chainedCheck(
		ctx,
		envCheck,
	); err != nil {
		return errors.Wrap(err, "chained check failed")
	}
	app, args, err := newApp(cmd.Context(), cmd, args)
	if err != nil {
		return errors.Wrapf(err, "new %s app failed", cmd.Name())
	}
	return errors.Wrap(app.Run(ctx, args), "run app failed")
}

func envCheck(ctx context.Context) error {
	err := internal.ValidateEnv()
	if err != nil {
		return errors.Wrap(err, "validate env failed")
	}
	log.SetLogger(internal.LogLevel)
	return nil
}

func chainedCheck(ctx context.Context, checks ...func(context.Context) error) error {
	for _, check := range checks {
		err := check(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	err := internal.RegisterCommandFlags(rootCmd, []*internal.Flag{
		&internal.EnvFlag,
		&internal.LogLevelFlag,

		&internal.PortFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	err = internal.RegisterCommandFlags(serverCmd, []*internal.Flag{
		&internal.CanvasWidthFlag,
		&internal.CanvasHeightFlag,
		&internal.SweepIntervalMSFlag,
		&internal.SweepGraceMSFlag,
		&internal.MDNSFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	err = internal.RegisterCommandFlags(clientCmd, []*internal.Flag{
		&internal.ClientAddrFlag,
		&internal.ClientColorFlag,
		&internal.ClientFlushMSFlag,
		&internal.ClientDiscoverFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	rootCmd.AddCommand(
		serverCmd,
		clientCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal(errors.Wrap(err, "execute root command failed"))
	}
}
