package main

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hiremind-interview"
)

type Config struct {
	APIURL    string        `mapstructure:"api-url"`
	Token     string        `mapstructure:"token"`
	TokenFile string        `mapstructure:"token-file"`
	Duration  time.Duration `mapstructure:"duration"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hiremind-interview runs an AI interview for one application from the terminal",
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"api-url":    "HIREMIND_API_URL",
		"token-file": "HIREMIND_TOKEN_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}
	viper.SetDefault("api-url", "http://localhost:8080")
	viper.SetDefault("duration", "15m")
	viper.SetDefault("timeout", "60s")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hiremind-interview.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// flags and environment are enough without a config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return config, nil
}
