package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eigerco/fury/internal/config"
	"github.com/eigerco/fury/internal/store"
	"github.com/eigerco/fury/pkg/db"
	"github.com/eigerco/fury/pkg/db/pebble"
	"github.com/eigerco/fury/pkg/log"
)

// app is the state shared by the subcommands once configuration is loaded.
type app struct {
	v        *viper.Viper
	cfgFile  string
	envFiles []string
	cfg      *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}
	root := &cobra.Command{
		Use:           "fury",
		Short:         "Deterministic raffle round engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ./fury.{yaml,toml,json} when present)")
	flags.StringSliceVar(&a.envFiles, "env-file", []string{".env"}, ".env files loaded before reading FURY_* variables")
	flags.String("data-dir", "", "directory of the pebble database")
	flags.Bool("in-memory", false, "keep the state in memory only")
	flags.String("staking-denom", "", "denomination accepted as stake")
	flags.String("sampling", "", "winner sampling: with_replacement or without_replacement")
	flags.String("remainder-policy", "", "payout remainder: rollover, admin or largest_share")
	flags.Int("cache-size", 0, "number of records kept in the read cache")
	flags.String("log-level", "", "log level")
	flags.String("log-format", "", "log format: console or json")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")
	flags.String("operator", "", "admin identity used to report settlements")
	bindFlags(a.v, flags, map[string]string{
		"data-dir":         config.KeyDataDir,
		"in-memory":        config.KeyInMemory,
		"staking-denom":    config.KeyStakingDenom,
		"sampling":         config.KeySampling,
		"remainder-policy": config.KeyRemainderPolicy,
		"cache-size":       config.KeyCacheSize,
		"log-level":        config.KeyLogLevel,
		"log-format":       config.KeyLogFormat,
		"metrics-addr":     config.KeyMetricsAddr,
		"operator":         config.KeyOperator,
	})

	root.AddCommand(newRunCmd(a), newInspectCmd(a))
	return root
}

// bindFlags binds each flag to its configuration key. Flags only take
// precedence when set explicitly.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

func (a *app) load() error {
	if err := config.LoadDotEnv(a.envFiles...); err != nil {
		return err
	}
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	opts, err := cfg.LogOptions()
	if err != nil {
		return err
	}
	log.Init(opts)
	a.cfg = cfg
	return nil
}

func (a *app) openStore() (*store.Store, error) {
	var (
		kv  db.KVStore
		err error
	)
	if a.cfg.InMemory {
		kv, err = pebble.NewKVStore()
	} else {
		kv, err = pebble.Open(a.cfg.DataDir)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s, err := store.New(kv, a.cfg.CacheSize)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	log.Root.Debug().Bool("in_memory", a.cfg.InMemory).Str("data_dir", a.cfg.DataDir).Msg("store opened")
	return s, nil
}
