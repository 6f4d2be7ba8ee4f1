package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell"
	_ "github.com/mattn/go-sqlite3" // Blank import for sql drivers is "standard"
	"github.com/rivo/tview"
	"github.com/rmrobinson/gtfsboard/lib/stream"
	"github.com/rmrobinson/gtfsboard/services/departures"
	"github.com/rmrobinson/gtfsboard/services/transit"
	"github.com/rmrobinson/gtfsboard/services/ui/tboard/widget"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// windowSlack is added to the refresh period so the last departures of a round stay visible until the next one.
const windowSlack = time.Hour

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	v := viper.New()
	setupViper(v)

	if configPath := v.GetString(configPathKey); len(configPath) > 0 {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			logger.Fatal("unable to read config file",
				zap.String("config_path", configPath),
				zap.Error(err),
			)
		}
	}

	cfg, err := LoadConfig(v)
	if err != nil {
		logger.Fatal("unable to load config",
			zap.Error(err),
		)
	}

	var app *tview.Application
	var logView *widget.Debug
	if cfg.UI {
		// the terminal belongs to the board, so logs are drawn in their own pane
		app = tview.NewApplication()
		logView = widget.NewDebug(app)
		logger = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(logView),
			zap.InfoLevel,
		))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := cfg.schedulerOptions()
	if len(cfg.DBPath) > 0 {
		sqldb, err := sql.Open("sqlite3", cfg.DBPath)
		if err != nil {
			logger.Fatal("unable to open db",
				zap.String("db_path", cfg.DBPath),
				zap.Error(err),
			)
		}
		defer sqldb.Close()

		p := departures.NewSQLPersister(logger, sqldb)
		if err := p.Setup(ctx); err != nil {
			logger.Fatal("unable to setup persister",
				zap.Error(err),
			)
		}
		opts = append(opts, departures.WithPersister(p))
	}

	renderers := departures.MultiRenderer{departures.NewLogRenderer(logger)}
	var boardSink *stream.Sink
	if cfg.UI {
		boardSource := stream.NewSource(logger, 1)
		boardSink = boardSource.NewSink()
		defer boardSink.Close()
		renderers = append(renderers, departures.NewStreamRenderer(boardSource))
	}

	svc := transit.NewService(logger, transit.WithWindow(cfg.RefreshPeriod+windowSlack))
	scheduler := departures.NewScheduler(logger, departures.NewStore(), svc, renderers, opts...)

	if err := scheduler.Warm(ctx); err != nil {
		logger.Warn("unable to restore persisted trips",
			zap.Error(err),
		)
	}

	connStr := fmt.Sprintf("%s:%d", "", cfg.Port)
	lis, err := net.Listen("tcp", connStr)
	if err != nil {
		logger.Fatal("error initializing listener",
			zap.Error(err),
		)
	}
	defer lis.Close()
	logger.Info("listening",
		zap.String("local_addr", connStr),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Warn("grpc server stopped",
				zap.Error(err),
			)
		}
	}()

	go func() {
		if err := svc.Startup(ctx, cfg.Feed); err != nil {
			logger.Fatal("unable to load transit feeds",
				zap.Error(err),
			)
		}
	}()

	go func() {
		select {
		case <-svc.Ready():
			healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
			scheduler.Ready(ctx)
		case <-ctx.Done():
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	if cfg.UI {
		runUI(ctx, app, logView, boardSink, sigs)
	} else {
		sig := <-sigs
		logger.Info("received signal, shutting down",
			zap.Stringer("signal", sig),
		)
	}

	cancel()
	healthServer.Shutdown()
	<-scheduler.Stop().Done()
	grpcServer.GracefulStop()
}

// runUI draws the board until the application exits or a signal is received.
func runUI(ctx context.Context, app *tview.Application, logView *widget.Debug, sink *stream.Sink, sigs <-chan os.Signal) {
	board := widget.NewDepartures(app)
	go board.Run(sink)

	clock := widget.NewClock(app, time.Local)
	go clock.Run(ctx)

	go func() {
		select {
		case <-sigs:
			app.Stop()
		case <-ctx.Done():
		}
	}()

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(clock, 4, 1, false).
		AddItem(board, 0, 3, true).
		AddItem(logView, 0, 1, false)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})

	if err := app.SetRoot(layout, true).SetFocus(layout).Run(); err != nil {
		panic(err)
	}
}
