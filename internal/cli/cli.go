// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package cli implements the appconfig command line tool.
package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand returns the appconfig command. Every flag may also be
// given as an APPCONFIG_ prefixed environment variable, e.g. APPCONFIG_NAME.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "appconfig",
		Short:         "Resolve layered application settings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newShowCommand(newViper()))
	return cmd
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("APPCONFIG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}
