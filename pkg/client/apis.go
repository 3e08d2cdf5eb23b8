package client

import (
	"encoding/json"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/wowitsjack/cool-little-battery/pkg/battery"
	"github.com/wowitsjack/cool-little-battery/pkg/config"
)

// Status mirrors the daemon's GET /status payload.
type Status struct {
	Reading battery.Reading       `json:"reading"`
	Band    string                `json:"band"`
	Config  *config.RawFileConfig `json:"config"`
}

func (c *Client) GetStatus() (*Status, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get status")
	}

	var st Status
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal status")
	}
	return &st, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return &conf, nil
}

func (c *Client) SetWarningLevel(l int) (string, error) {
	return c.Put("/warning-level", strconv.Itoa(l))
}

func (c *Client) SetCriticalLevel(l int) (string, error) {
	return c.Put("/critical-level", strconv.Itoa(l))
}

func (c *Client) SetCheckInterval(secs int) (string, error) {
	return c.Put("/check-interval", strconv.Itoa(secs))
}

func (c *Client) SetAlertTimeout(secs int) (string, error) {
	return c.Put("/alert-timeout", strconv.Itoa(secs))
}

func (c *Client) SetForceSuspend(enabled bool) (string, error) {
	return c.Put("/force-suspend", strconv.FormatBool(enabled))
}

func (c *Client) SetImpossibleAlerts(enabled bool) (string, error) {
	return c.Put("/impossible-alerts", strconv.FormatBool(enabled))
}

func (c *Client) SetSuspendMethod(m int) (string, error) {
	return c.Put("/suspend-method", strconv.Itoa(m))
}

func (c *Client) CheckNow() (string, error) {
	return c.Send("POST", "/check-now", "")
}

func (c *Client) TestSuspend() (string, error) {
	return c.Send("POST", "/test-suspend", "")
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	// Remove "" around JSON string. I don't want to use a JSON decoder just for this.
	if len(ret) >= 2 && ret[0] == '"' && ret[len(ret)-1] == '"' {
		ret = ret[1 : len(ret)-1]
	}
	return ret, nil
}
