package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rmrobinson/gtfsboard/services/departures"
	"github.com/rmrobinson/gtfsboard/services/transit"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned if the loaded configuration fails validation.
var ErrInvalidConfig = errors.New("config invalid")

const (
	configPathKey         = "config_path"
	departuresPerRouteKey = "departures_per_route"
	refreshPeriodKey      = "refresh_period"
	tickPeriodKey         = "tick_period"
	queryTimeoutKey       = "query_timeout"
	dbPathKey             = "db_path"
	portKey               = "port"
	uiKey                 = "ui"

	defaultPort = 10104
)

// Config is the complete configuration of the departure board daemon.
type Config struct {
	Feed    transit.FeedConfig `mapstructure:"feed"`
	Queries []departures.Query `mapstructure:"queries" validate:"required,min=1,dive"`

	DeparturesPerRoute int           `mapstructure:"departures_per_route" validate:"min=1"`
	QueryTimeout       time.Duration `mapstructure:"query_timeout" validate:"gt=0"`

	// cron schedules in whole seconds, so both cycle periods must be too
	RefreshPeriod time.Duration `mapstructure:"refresh_period" validate:"min=1s,whole_seconds"`
	TickPeriod    time.Duration `mapstructure:"tick_period" validate:"min=1s,whole_seconds"`

	// DBPath is the sqlite database the last refresh is saved to. Nothing is saved if empty.
	DBPath string `mapstructure:"db_path"`
	Port   int    `mapstructure:"port" validate:"min=1,max=65535"`
	UI     bool   `mapstructure:"ui"`
}

// setupViper registers the defaults and the environment variables understood by the daemon.
func setupViper(v *viper.Viper) {
	v.SetEnvPrefix("NVS")
	v.BindEnv(configPathKey)
	v.BindEnv(departuresPerRouteKey)
	v.BindEnv(refreshPeriodKey)
	v.BindEnv(tickPeriodKey)
	v.BindEnv(queryTimeoutKey)
	v.BindEnv(dbPathKey)
	v.BindEnv(portKey)
	v.BindEnv(uiKey)

	v.SetDefault(departuresPerRouteKey, departures.DefaultDeparturesPerRoute)
	v.SetDefault(refreshPeriodKey, departures.DefaultRefreshPeriod)
	v.SetDefault(tickPeriodKey, departures.DefaultTickPeriod)
	v.SetDefault(queryTimeoutKey, departures.DefaultQueryTimeout)
	v.SetDefault(portKey, defaultPort)
	v.SetDefault(uiKey, false)
}

// LoadConfig decodes and validates the configuration held by v.
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if err := newValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("whole_seconds", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%int64(time.Second) == 0
	})
	return validate
}

// schedulerOptions converts the configuration into scheduler options.
func (c *Config) schedulerOptions() []departures.Option {
	return []departures.Option{
		departures.WithQueries(c.Queries...),
		departures.WithDeparturesPerRoute(c.DeparturesPerRoute),
		departures.WithRefreshPeriod(c.RefreshPeriod),
		departures.WithTickPeriod(c.TickPeriod),
		departures.WithQueryTimeout(c.QueryTimeout),
	}
}
