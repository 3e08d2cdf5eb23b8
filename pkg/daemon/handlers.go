package daemon

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wowitsjack/cool-little-battery/pkg/battery"
	"github.com/wowitsjack/cool-little-battery/pkg/config"
	"github.com/wowitsjack/cool-little-battery/pkg/events"
	"github.com/wowitsjack/cool-little-battery/pkg/monitor"
	"github.com/wowitsjack/cool-little-battery/pkg/suspend"
	"github.com/wowitsjack/cool-little-battery/pkg/version"
)

// StatusResponse is the payload of GET /status.
type StatusResponse struct {
	Reading battery.Reading       `json:"reading"`
	Band    string                `json:"band"`
	Config  *config.RawFileConfig `json:"config"`
}

func getStatus(c *gin.Context) {
	reading := sampler.Sample()
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, StatusResponse{
		Reading: reading,
		Band:    monitor.Classify(reading, conf).String(),
		Config:  fc,
	})
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

// saveAndConfirm persists the config and publishes the settings-saved
// notification. It is the tail of every settings-update handler.
func saveAndConfirm(c *gin.Context, what string) bool {
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return false
	}
	hub.Publish(events.AlertNotify, events.AlertEvent{
		Title:   "Settings Saved",
		Message: "Battery monitor settings have been updated!",
		Urgency: "normal",
		Ts:      time.Now().Unix(),
	})
	logrus.Infof("%s", what)
	return true
}

func setWarningLevel(c *gin.Context) {
	var l int
	if err := c.BindJSON(&l); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if l < 1 || l > 100 {
		err := fmt.Errorf("warning level must be between 1 and 100, got %d", l)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetWarningLevel(l)
	if !saveAndConfirm(c, fmt.Sprintf("set warning level to %d", l)) {
		return
	}
	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("warning level set to %d%%, critical level is %d%%", conf.WarningLevel(), conf.CriticalLevel()))
}

func setCriticalLevel(c *gin.Context) {
	var l int
	if err := c.BindJSON(&l); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if l < 1 || l > 100 {
		err := fmt.Errorf("critical level must be between 1 and 100, got %d", l)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if l >= conf.WarningLevel() {
		err := fmt.Errorf("critical level must be below the warning level (%d), got %d", conf.WarningLevel(), l)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetCriticalLevel(l)
	if !saveAndConfirm(c, fmt.Sprintf("set critical level to %d", l)) {
		return
	}
	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("critical level set to %d%%, warning level is %d%%", conf.CriticalLevel(), conf.WarningLevel()))
}

func setCheckInterval(c *gin.Context) {
	var secs int
	if err := c.BindJSON(&secs); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if secs < 1 {
		err := fmt.Errorf("check interval must be positive, got %d", secs)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetCheckIntervalSeconds(secs)
	if !saveAndConfirm(c, fmt.Sprintf("set check interval to %ds", secs)) {
		return
	}

	// Restart the poll timer with the new interval; escalation state is
	// preserved.
	monitorLoop.Reschedule(time.Duration(secs) * time.Second)

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("check interval set to %d seconds", secs))
}

func setAlertTimeout(c *gin.Context) {
	var secs int
	if err := c.BindJSON(&secs); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if secs < 1 {
		err := fmt.Errorf("alert timeout must be positive, got %d", secs)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetAlertTimeoutSeconds(secs)
	if !saveAndConfirm(c, fmt.Sprintf("set alert timeout to %ds", secs)) {
		return
	}
	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("alert timeout set to %d seconds", secs))
}

func setForceSuspend(c *gin.Context) {
	var b bool
	if err := c.BindJSON(&b); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetForceSuspend(b)
	if !saveAndConfirm(c, fmt.Sprintf("set force suspend to %t", b)) {
		return
	}
	c.IndentedJSON(http.StatusCreated, "ok")
}

func setImpossibleAlerts(c *gin.Context) {
	var b bool
	if err := c.BindJSON(&b); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetImpossibleAlerts(b)
	if !saveAndConfirm(c, fmt.Sprintf("set impossible alerts to %t", b)) {
		return
	}
	c.IndentedJSON(http.StatusCreated, "ok")
}

func setSuspendMethod(c *gin.Context) {
	var m int
	if err := c.BindJSON(&m); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if !suspend.Known(suspend.Method(m)) {
		err := fmt.Errorf("suspend method must be between %d and %d, got %d", int(suspend.Systemd), int(suspend.Kernel), m)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	conf.SetSuspendMethod(suspend.Method(m))
	if !saveAndConfirm(c, fmt.Sprintf("set suspend method to %s", suspend.Method(m))) {
		return
	}
	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("suspend method set to %s", suspend.Method(m)))
}

func checkNow(c *gin.Context) {
	monitorLoop.CheckNow()
	c.IndentedJSON(http.StatusOK, "ok")
}

// testSuspend runs the configured method once, immediately, bypassing all
// escalation and grace logic. Operator verification only.
func testSuspend(c *gin.Context) {
	method := conf.SuspendMethod()
	logrus.Infof("test suspend requested, method %s", method)

	hub.Publish(events.AlertNotify, events.AlertEvent{
		Title:   "Testing Suspend",
		Message: "System will suspend now...",
		Urgency: "normal",
		Ts:      time.Now().Unix(),
	})

	if err := executor.Test(method); err != nil {
		logrus.Errorf("test suspend failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fmt.Sprintf("suspend method %s succeeded", method))
}

func getEvents(c *gin.Context) {
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
