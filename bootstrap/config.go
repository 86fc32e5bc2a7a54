package bootstrap

import "github.com/kbukum/dagpipe/config"

// Config is satisfied by any struct embedding config.Config by value,
// which lets a service add its own sections:
//
//	type EtlConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Source        string `yaml:"source" mapstructure:"source"`
//	}
//
//	app, err := bootstrap.NewApp(&cfg)
type Config interface {
	GetConfig() *config.Config
	ApplyDefaults()
	Validate() error
}
