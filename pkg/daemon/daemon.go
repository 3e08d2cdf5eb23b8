package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/wowitsjack/cool-little-battery/pkg/battery"
	"github.com/wowitsjack/cool-little-battery/pkg/config"
	"github.com/wowitsjack/cool-little-battery/pkg/events"
	"github.com/wowitsjack/cool-little-battery/pkg/notify"
	"github.com/wowitsjack/cool-little-battery/pkg/suspend"
)

var (
	conf        config.Config
	sampler     battery.Sampler
	executor    *suspend.Executor
	hub         *events.Hub
	monitorLoop *Monitor
)

// ErrNoBattery is returned when no battery is detected at startup. The
// watchdog is pointless on a machine without one, so the process exits
// nonzero.
var ErrNoBattery = errors.New("no battery detected")

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", getStatus)
	router.GET("/config", getConfig)
	router.GET("/events", getEvents)
	router.GET("/version", getVersion)
	router.PUT("/warning-level", setWarningLevel)
	router.PUT("/critical-level", setCriticalLevel)
	router.PUT("/check-interval", setCheckInterval)
	router.PUT("/alert-timeout", setAlertTimeout)
	router.PUT("/force-suspend", setForceSuspend)
	router.PUT("/impossible-alerts", setImpossibleAlerts)
	router.PUT("/suspend-method", setSuspendMethod)
	router.POST("/check-now", checkNow)
	router.POST("/test-suspend", testSuspend)

	return router
}

// Run starts the watchdog daemon: loads config, verifies a battery is
// present, starts the monitor loop, and serves the control API on a unix
// socket until SIGINT/SIGTERM.
func Run(configPath string, unixSocketPath string) error {
	router := setupRoutes()

	var err error
	conf, err = config.NewFile(configPath)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to parse config during startup")
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	hub = events.NewHub()
	sampler = battery.NewDefaultSampler()
	executor = suspend.NewExecutor(nil)

	var notifier notify.Notifier
	if n := notify.NewSendNotifier(); n.Available() {
		notifier = n
	} else {
		logrus.Warn("notify-send not found, desktop notifications disabled")
	}

	// A watchdog without a battery has nothing to watch.
	if initial := sampler.Sample(); !initial.Present {
		return ErrNoBattery
	}

	monitorLoop = NewMonitor(sampler, conf, executor, hub, notifier)

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			if err := conf.Load(); err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			monitorLoop.Reschedule(time.Duration(conf.CheckIntervalSeconds()) * time.Second)
			logrus.WithFields(conf.LogrusFields()).Infof("config reloaded")
		}
	}()

	srv := &http.Server{
		Handler: router,
	}

	// Remove a stale socket from a previous run before listening.
	_ = os.Remove(unixSocketPath)
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to listen on %s", unixSocketPath)
	}

	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	logrus.Debugln("monitor loop starts")
	monitorLoop.Start()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("stopping monitor loop")
	monitorLoop.Stop()

	if err := conf.Save(); err != nil {
		logrus.Errorf("failed to persist config on shutdown: %v", err)
	}

	logrus.Info("exiting")
	return nil
}
