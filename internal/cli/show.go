// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/z5labs/appconfig"
	"github.com/z5labs/appconfig/heroku"
	"github.com/z5labs/appconfig/internal/noop"
	"github.com/z5labs/appconfig/internal/otelconfig"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// MissingFlagError occurs when a required flag is set neither on the
// command line nor in the environment.
type MissingFlagError struct {
	Name string
}

// Error implements the [builtin.error] interface.
func (e MissingFlagError) Error() string {
	return fmt.Sprintf("missing required flag: --%s", e.Name)
}

// UnknownFormatError occurs when the output format is not supported.
type UnknownFormatError struct {
	Format string
}

// Error implements the [builtin.error] interface.
func (e UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown output format: %s", e.Format)
}

type showConfig struct {
	Name        string   `mapstructure:"name"`
	File        string   `mapstructure:"file"`
	DotEnv      []string `mapstructure:"dotenv"`
	Heroku      bool     `mapstructure:"heroku"`
	Raw         bool     `mapstructure:"raw"`
	Format      string   `mapstructure:"format"`
	ShowSecrets bool     `mapstructure:"show-secrets"`
	Trace       bool     `mapstructure:"trace"`
	Debug       bool     `mapstructure:"debug"`
}

func newShowCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings of an application",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var cfg showConfig
			err = v.Unmarshal(&cfg)
			if err != nil {
				return err
			}
			if len(cfg.Name) == 0 {
				return MissingFlagError{Name: "name"}
			}

			if cfg.Trace {
				var shutdown func(context.Context) error
				shutdown, err = otelconfig.Install(otelconfig.Local(
					otelconfig.ServiceName("appconfig"),
					otelconfig.Writer(cmd.ErrOrStderr()),
				))
				if err != nil {
					return err
				}
				defer func() {
					err = errors.Join(err, shutdown(context.WithoutCancel(cmd.Context())))
				}()
			}

			return show(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("name", "", "application name, selects the default settings and the env var prefix")
	flags.String("file", "", "settings file applied on top of the defaults")
	flags.StringSlice("dotenv", nil, "dotenv files layered underneath the process environment")
	flags.Bool("heroku", false, "apply the Heroku add-on conventions")
	flags.Bool("raw", false, "import environment variables as strings instead of JSON literals")
	flags.String("format", "yaml", "output format, one of: yaml, json")
	flags.Bool("show-secrets", false, "print secret values instead of masking them")
	flags.Bool("trace", false, "print trace spans to stderr")
	flags.Bool("debug", false, "log the loaded sources to stderr")

	return cmd
}

func show(ctx context.Context, out, errOut io.Writer, cfg showConfig) error {
	enc, ok := encoders[cfg.Format]
	if !ok {
		return UnknownFormatError{Format: cfg.Format}
	}

	var h slog.Handler = noop.LogHandler{}
	if cfg.Debug {
		h = slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	opts := []appconfig.Option{
		appconfig.LogHandler(h),
		appconfig.DotEnv(cfg.DotEnv...),
	}
	if len(cfg.File) > 0 {
		opts = append(opts, appconfig.ConfigFile(cfg.File))
	}
	if cfg.Raw {
		opts = append(opts, appconfig.EnvVars(appconfig.EnvRaw))
	}
	if cfg.Heroku {
		opts = append(opts, appconfig.WithAdapter(heroku.New(heroku.LogHandler(h))))
	}

	s, err := appconfig.Load(ctx, cfg.Name, opts...)
	if err != nil {
		return err
	}

	return enc(out, entries(s, !cfg.ShowSecrets))
}
