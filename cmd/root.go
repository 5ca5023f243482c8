package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"lending/config"
	"lending/core"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yiplee/structs"
)

const defaultConfigName = ".lending.yaml"

var (
	cfg core.Config

	_flag struct {
		config    string
		debug     bool
		logFormat string
	}
)

var rootCmd = cobra.Command{
	Use:   "lending",
	Short: "pooled lending ledger with adaptive rate curves",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(); err != nil {
			return err
		}

		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&_flag.config, "config", "", "config file, defaults to ~/"+defaultConfigName)
	rootCmd.PersistentFlags().BoolVar(&_flag.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&_flag.logFormat, "log-format", "text", "log format, text or json")
}

// Execute runs the root command, called once by main
func Execute(ver string) {
	rootCmd.Version = ver
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func setupLogging() error {
	level := logrus.InfoLevel
	if _flag.debug {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	switch _flag.logFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", _flag.logFormat)
	}

	structs.DefaultTagName = "json"
	return nil
}

// loadConfig falls back to the file in the home dir, env vars alone are
// enough when neither exists
func loadConfig() error {
	file := _flag.config
	if file == "" {
		dir, err := homedir.Dir()
		if err != nil {
			return err
		}

		if info, err := os.Stat(filepath.Join(dir, defaultConfigName)); err == nil && !info.IsDir() {
			file = filepath.Join(dir, defaultConfigName)
		}
	}

	logrus.WithField("file", file).Debugln("load config")
	return config.Load(file, &cfg)
}
