// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/arrange"
	"github.com/xmidt-org/repodeck/apiclient"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// command line flags
const (
	fileFlag    = "file"
	debugFlag   = "debug"
	versionFlag = "version"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	fs.StringP(fileFlag, "f", "", "the configuration file to use.  Overrides the search path.")
	fs.BoolP(debugFlag, "d", false, "enables debug logging.  Overrides configuration.")
	fs.BoolP(versionFlag, "v", false, "print version and exit")
	return fs
}

// setup parses the command line, loads the configuration and builds the
// application logger from its logging section.
func setup(args []string) (*viper.Viper, *zap.Logger, error) {
	bootstrap, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	fs := newFlagSet()
	if err = fs.Parse(args); err != nil {
		return nil, bootstrap, fmt.Errorf("failed to parse args: %w", err)
	}
	if printVersion, _ := fs.GetBool(versionFlag); printVersion {
		printVersionInfo(os.Stdout)
		os.Exit(0)
	}

	v, err := loadConfig(fs)
	if err != nil {
		return v, bootstrap, err
	}

	var c sallust.Config
	if err = v.UnmarshalKey("logging", &c, arrange.ComposeDecodeHooks(sallust.DecodeHook)); err != nil {
		return v, bootstrap, err
	}

	logger, err := c.Build()
	if err != nil {
		return v, bootstrap, err
	}
	return v, logger.With(zap.String("version", Version)), nil
}

func loadConfig(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(applicationName)
	v.AutomaticEnv()
	setDefaults(v)

	if file, _ := fs.GetString(fileFlag); len(file) > 0 {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(applicationName)
		v.AddConfigPath(fmt.Sprintf("/etc/%s", applicationName))
		v.AddConfigPath(fmt.Sprintf("$HOME/.%s", applicationName))
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		return v, fmt.Errorf("failed to read config file: %w", err)
	}

	if debug, _ := fs.GetBool(debugFlag); debug {
		v.Set("logging.level", "DEBUG")
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("servers.primary.address", ":6600")
	v.SetDefault("servers.metrics.address", ":6601")
	v.SetDefault("servers.health.address", ":6602")
	v.SetDefault("servers.metrics.path", "/metrics")
	v.SetDefault("servers.health.path", "/health")
	v.SetDefault("refresh.loadOnStart", true)
	v.SetDefault("refresh.timeout", "1m")
	v.SetDefault("refresh.ttl", "24h")
	v.SetDefault("remote.fallbackMessage", apiclient.DefaultFallbackMessage)
}

func printVersionInfo(w io.Writer) {
	fmt.Fprintf(w, "%s:\n", applicationName)
	fmt.Fprintf(w, "  version: \t%s\n", Version)
	fmt.Fprintf(w, "  go version: \t%s\n", runtime.Version())
	fmt.Fprintf(w, "  built time: \t%s\n", BuildTime)
	fmt.Fprintf(w, "  git commit: \t%s\n", GitCommit)
	fmt.Fprintf(w, "  os/arch: \t%s/%s\n", runtime.GOOS, runtime.GOARCH)
}
