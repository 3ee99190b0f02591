package gogogate2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Login form field names of the device web UI.
const (
	loginFormUser     = "login"
	loginFormPassword = "pass"
	loginFormButton   = "send-login"
)

// restrictedAccessMarker appears in web UI responses served to an
// unauthenticated session. The endpoint always answers HTTP 200.
const restrictedAccessMarker = "Restricted Access"

// ErrRestrictedAccess indicates the sensor endpoint rejected the session
// even after a fresh login.
var ErrRestrictedAccess = errors.New("restricted access")

// Sensor reads a door's wireless sensor through the device web UI. This
// endpoint exists on iSmartGate devices only and uses a cookie session
// instead of the encrypted command API; the client logs in and retries
// once when the session has expired.
func (c *Client) Sensor(ctx context.Context, doorID int) (*SensorResponse, error) {
	// One timeout covers the read and the potential re-login round trip.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	body, err := c.sensorRequest(ctx, doorID)
	if err != nil {
		return nil, err
	}

	if strings.Contains(body, restrictedAccessMarker) {
		if err := c.webLogin(ctx); err != nil {
			return nil, err
		}
		body, err = c.sensorRequest(ctx, doorID)
		if err != nil {
			return nil, err
		}
		if strings.Contains(body, restrictedAccessMarker) {
			return nil, ErrRestrictedAccess
		}
	}

	// The endpoint answers with a bracketed pair of numeric strings:
	// ["<temperature millidegrees>", "<voltage>"].
	var values [2]string
	if err := json.Unmarshal([]byte(body), &values); err != nil {
		return nil, fmt.Errorf("parse sensor response: %w", err)
	}

	response := &SensorResponse{}
	if raw, err := strconv.Atoi(strings.TrimSpace(values[0])); err == nil && raw > noneInt {
		temperature := float64(raw) / 1000
		response.Temperature = &temperature
	}
	if raw, err := strconv.Atoi(strings.TrimSpace(values[1])); err == nil && raw > noneInt {
		voltage := raw
		response.Voltage = &voltage
	}
	return response, nil
}

func (c *Client) sensorRequest(ctx context.Context, doorID int) (string, error) {
	target := c.serviceURL(temperaturePath) + "?door=" + strconv.Itoa(doorID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// webLogin authenticates the cookie session against the device web UI
// login form.
func (c *Client) webLogin(ctx context.Context) error {
	form := url.Values{
		loginFormUser:     []string{c.username},
		loginFormPassword: []string{c.password},
		loginFormButton:   []string{"Sign In"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL(indexPath), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return err
	}

	if c.logger != nil {
		c.logger.Debug("web session login", "host", c.host)
	}
	return nil
}
