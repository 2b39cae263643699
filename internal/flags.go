// Package internal holds the environment-backed configuration shared by
// the pixelpaint commands. Each value is exposed as a CLI flag and may be
// overridden by its environment variable when the flag is not set.
package internal

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Configuration values, populated from flags and environment.
var (
	Env      = "development"
	LogLevel = "info"

	Port         = 8080
	CanvasWidth  = 64
	CanvasHeight = 64

	SweepIntervalMS = 10000
	SweepGraceMS    = 1000
	MDNS            = false

	ClientAddr     = ""
	ClientColor    = "#1e90ff"
	ClientFlushMS  = 50
	ClientDiscover = false
)

// Flag binds a configuration value to a CLI flag and environment variable.
type Flag struct {
	Name   string
	Env    string
	Usage  string
	Target interface{}
}

// Shared flag definitions.
var (
	EnvFlag      = Flag{Name: "env", Env: "ENV", Usage: "deployment environment", Target: &Env}
	LogLevelFlag = Flag{Name: "log-level", Env: "LOG_LEVEL", Usage: "log level (trace|debug|info|warn|error)", Target: &LogLevel}

	PortFlag         = Flag{Name: "port", Env: "PORT", Usage: "server port", Target: &Port}
	CanvasWidthFlag  = Flag{Name: "canvas-width", Env: "CANVAS_WIDTH", Usage: "canvas width in cells", Target: &CanvasWidth}
	CanvasHeightFlag = Flag{Name: "canvas-height", Env: "CANVAS_HEIGHT", Usage: "canvas height in cells", Target: &CanvasHeight}

	SweepIntervalMSFlag = Flag{Name: "sweep-interval-ms", Env: "SWEEP_INTERVAL_MS", Usage: "period between liveness sweeps", Target: &SweepIntervalMS}
	SweepGraceMSFlag    = Flag{Name: "sweep-grace-ms", Env: "SWEEP_GRACE_MS", Usage: "liveness reply window", Target: &SweepGraceMS}
	MDNSFlag            = Flag{Name: "mdns", Env: "MDNS", Usage: "advertise the server on the local network", Target: &MDNS}

	ClientAddrFlag     = Flag{Name: "addr", Env: "CLIENT_ADDR", Usage: "server host:port to connect to", Target: &ClientAddr}
	ClientColorFlag    = Flag{Name: "color", Env: "CLIENT_COLOR", Usage: "display color to register with", Target: &ClientColor}
	ClientFlushMSFlag  = Flag{Name: "flush-ms", Env: "CLIENT_FLUSH_MS", Usage: "paint batching window", Target: &ClientFlushMS}
	ClientDiscoverFlag = Flag{Name: "discover", Env: "CLIENT_DISCOVER", Usage: "locate the server over mDNS", Target: &ClientDiscover}
)

type registration struct {
	cmd  *cobra.Command
	flag *Flag
}

var registered []registration

// RegisterCommandFlags registers the flags on the command and remembers the
// binding for environment resolution.
func RegisterCommandFlags(cmd *cobra.Command, flags []*Flag) error {
	for _, f := range flags {
		switch target := f.Target.(type) {
		case *string:
			cmd.PersistentFlags().StringVar(target, f.Name, *target, f.Usage)
		case *int:
			cmd.PersistentFlags().IntVar(target, f.Name, *target, f.Usage)
		case *bool:
			cmd.PersistentFlags().BoolVar(target, f.Name, *target, f.Usage)
		default:
			return errors.Errorf("unsupported flag target for %s", f.Name)
		}
		registered = append(registered, registration{cmd: cmd, flag: f})
	}
	return nil
}

// ValidateEnv applies environment overrides for flags not set on the
// command line, then validates the resulting configuration.
func ValidateEnv() error {
	for _, reg := range registered {
		if reg.cmd.PersistentFlags().Changed(reg.flag.Name) {
			continue
		}
		raw, ok := os.LookupEnv(reg.flag.Env)
		if !ok {
			continue
		}
		switch target := reg.flag.Target.(type) {
		case *string:
			*target = raw
		case *int:
			v, err := strconv.Atoi(raw)
			if err != nil {
				return errors.Wrapf(err, "parse %s failed", reg.flag.Env)
			}
			*target = v
		case *bool:
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return errors.Wrapf(err, "parse %s failed", reg.flag.Env)
			}
			*target = v
		}
	}
	if Port < 1 || Port > 65535 {
		return errors.Errorf("port %d out of range", Port)
	}
	if CanvasWidth < 1 || CanvasHeight < 1 {
		return errors.New("canvas dimensions must be positive")
	}
	if SweepGraceMS < 1 || SweepIntervalMS < 1 {
		return errors.New("sweep timings must be positive")
	}
	if SweepGraceMS >= SweepIntervalMS {
		return errors.New("sweep grace must be shorter than the sweep interval")
	}
	return nil
}
