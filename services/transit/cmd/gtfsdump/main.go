package main

import (
	"context"
	"flag"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/rmrobinson/gtfsboard/services/departures"
	"github.com/rmrobinson/gtfsboard/services/transit"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// dumpConfig is the subset of the daemon configuration needed to print a board.
type dumpConfig struct {
	Feed               transit.FeedConfig `yaml:"feed"`
	Queries            []departures.Query `yaml:"queries"`
	DeparturesPerRoute int                `yaml:"departures_per_route"`
}

func parseConfig(contents []byte) (*dumpConfig, error) {
	cfg := &dumpConfig{
		DeparturesPerRoute: departures.DefaultDeparturesPerRoute,
	}
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// dump runs every query once and writes the resulting board to w.
func dump(ctx context.Context, logger *zap.Logger, provider departures.Provider, cfg *dumpConfig, now time.Time, w io.Writer) error {
	var trips []departures.Trip
	for _, q := range cfg.Queries {
		results, err := provider.RunQuery(ctx, q)
		if err != nil {
			logger.Warn("error running query",
				zap.String("route_name", q.RouteName),
				zap.String("stop_name", q.StopName),
				zap.Error(err),
			)
			continue
		}
		trips = append(trips, results...)
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	return enc.Encode(departures.Build(trips, cfg.DeparturesPerRoute, now))
}

func main() {
	var (
		configPath = flag.String("config", "", "The path to the departure board config file")
		window     = flag.Duration("window", transit.DefaultWindow, "How far ahead to look for departures")
	)

	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	contents, err := ioutil.ReadFile(*configPath)
	if err != nil {
		logger.Fatal("error opening config file",
			zap.String("config_path", *configPath),
			zap.Error(err),
		)
	}

	cfg, err := parseConfig(contents)
	if err != nil {
		logger.Fatal("unable to parse config file",
			zap.String("config_path", *configPath),
			zap.Error(err),
		)
	}

	ctx := context.Background()
	svc := transit.NewService(logger, transit.WithWindow(*window))
	if err := svc.Startup(ctx, cfg.Feed); err != nil {
		logger.Fatal("cannot run without feed",
			zap.Error(err),
		)
	}

	if err := dump(ctx, logger, svc, cfg, time.Now(), os.Stdout); err != nil {
		logger.Fatal("unable to write board",
			zap.Error(err),
		)
	}
}
