package gogogate2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Service paths on the device web server.
const (
	apiPath         = "/api.php"
	indexPath       = "/index.php"
	temperaturePath = "/isg/temperature.php"
)

// requestOption is the command selector of the API payload.
type requestOption string

const (
	optionInfo     requestOption = "info"
	optionActivate requestOption = "activate"
)

// family captures the points where the two device generations differ.
// A configuration struct keeps the facade generic without mirroring the
// firmware's parallel API surfaces as a type hierarchy.
type family struct {
	name       string
	decodeInfo func(*element) (*InfoResponse, error)
	errorTable map[int]error

	// activateCode returns the api code sent with activate commands.
	activateCode func(*InfoResponse, int) (string, error)
	// extraParams returns additional query parameters, nil when the
	// family sends none.
	extraParams func(*Client) url.Values
}

var gogoGate2Family = family{
	name:       "gogogate2",
	decodeInfo: decodeGogoGate2Info,
	errorTable: gogoGate2Errors,
	activateCode: func(info *InfoResponse, doorID int) (string, error) {
		// GogoGate2 uses a single device-level api code.
		return info.APICode, nil
	},
}

var iSmartGateFamily = family{
	name:       "ismartgate",
	decodeInfo: decodeISmartGateInfo,
	errorTable: iSmartGateErrors,
	activateCode: func(info *InfoResponse, doorID int) (string, error) {
		door := info.DoorByID(doorID)
		if door == nil {
			return "", &InvalidDoorError{DoorID: doorID}
		}
		return door.APICode, nil
	},
	extraParams: func(c *Client) url.Values {
		// The device validates the token server side before decrypting;
		// t is a cache buster.
		return url.Values{
			"t":     []string{strconv.Itoa(rand.Intn(100000000) + 1)},
			"token": []string{c.token},
		}
	},
}

// doorTransition records that a door was recently commanded toward a
// target status. The devices have no telemetry for a door in motion;
// these entries approximate it.
type doorTransition struct {
	doorID     int
	activated  time.Time
	transition DoorStatus
	target     DoorStatus
}

// Client communicates with a single GogoGate2 or iSmartGate device.
// It is safe for concurrent use.
type Client struct {
	host     string
	username string
	password string
	cipher   *Cipher
	token    string
	family   family

	httpClient        *http.Client
	requestTimeout    time.Duration
	transitionTimeout time.Duration
	comparison        StatusComparison
	logger            *slog.Logger

	now func() time.Time

	mu          sync.Mutex
	transitions map[int]doorTransition
}

// NewGogoGate2Client creates a client for a GogoGate2 device.
func NewGogoGate2Client(host, username, password string, opts ...ClientOption) (*Client, error) {
	apiCipher, err := NewGogoGate2Cipher()
	if err != nil {
		return nil, err
	}
	return newClient(host, username, password, apiCipher, "", gogoGate2Family, opts)
}

// NewISmartGateClient creates a client for an iSmartGate device.
func NewISmartGateClient(host, username, password string, opts ...ClientOption) (*Client, error) {
	apiCipher, err := NewISmartGateCipher(username, password)
	if err != nil {
		return nil, err
	}
	return newClient(host, username, password, apiCipher.Cipher, apiCipher.Token(), iSmartGateFamily, opts)
}

func newClient(host, username, password string, apiCipher *Cipher, token string, fam family, opts []ClientOption) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	c := &Client{
		host:              host,
		username:          username,
		password:          password,
		cipher:            apiCipher,
		token:             token,
		family:            fam,
		httpClient:        httpClient,
		requestTimeout:    cfg.requestTimeout,
		transitionTimeout: cfg.transitionTimeout,
		comparison:        cfg.comparison,
		logger:            cfg.logger,
		now:               time.Now,
		transitions:       make(map[int]doorTransition),
	}

	if c.logger != nil {
		c.logger.Debug("client created", "host", host, "family", fam.name)
	}

	return c, nil
}

// Host returns the device host.
func (c *Client) Host() string {
	return c.host
}

// Username returns the account username.
func (c *Client) Username() string {
	return c.username
}

// Token returns the iSmartGate access token, empty for GogoGate2
// clients.
func (c *Client) Token() string {
	return c.token
}

// Close releases the underlying HTTP transport.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
	if c.logger != nil {
		c.logger.Debug("client closed", "host", c.host)
	}
}

func (c *Client) serviceURL(path string) string {
	return "http://" + c.host + path
}

// request encrypts and sends a command, decrypts and parses the
// response, and raises any error element as a typed *ApiError.
func (c *Client) request(ctx context.Context, option requestOption, arg1, arg2 string) (*element, error) {
	command, err := json.Marshal([5]string{c.username, c.password, string(option), arg1, arg2})
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("data", c.cipher.Encrypt(string(command)))
	if c.family.extraParams != nil {
		for key, values := range c.family.extraParams(c) {
			for _, value := range values {
				params.Add(key, value)
			}
		}
	}

	// Apply the request timeout if the context has no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serviceURL(apiPath)+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	if c.logger != nil {
		c.logger.Debug("request sent", "option", option, "host", c.host)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// Error payloads are sent unencrypted; fall back to the raw body
	// when decryption fails.
	raw := string(body)
	text, err := c.cipher.Decrypt(raw)
	if err != nil {
		text = raw
	}

	root, err := parseXML(text)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if errElement := root.find("error"); errElement != nil {
		apiErr, decodeErr := decodeAPIError(errElement, c.family.errorTable)
		if decodeErr != nil {
			return nil, decodeErr
		}
		if c.logger != nil {
			c.logger.Warn("device returned error", "code", apiErr.Code, "message", apiErr.Message)
		}
		return nil, apiErr
	}

	return root, nil
}

// Info fetches a snapshot of device and door state.
func (c *Client) Info(ctx context.Context) (*InfoResponse, error) {
	root, err := c.request(ctx, optionInfo, "", "")
	if err != nil {
		return nil, err
	}
	return c.family.decodeInfo(root)
}

// Activate pulses a door output. The devices have no separate open and
// close commands; pulsing a moving door stops it. Prefer OpenDoor and
// CloseDoor, which check the current status before sending anything.
func (c *Client) Activate(ctx context.Context, doorID int) (*ActivateResponse, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return nil, err
	}
	return c.activate(ctx, doorID, info)
}

func (c *Client) activate(ctx context.Context, doorID int, info *InfoResponse) (*ActivateResponse, error) {
	code, err := c.family.activateCode(info, doorID)
	if err != nil {
		return nil, err
	}
	root, err := c.request(ctx, optionActivate, strconv.Itoa(doorID), code)
	if err != nil {
		return nil, err
	}
	return decodeActivate(root)
}

// OpenDoor sends an open command unless the door is already open or
// credibly opening. It reports whether a command was sent.
func (c *Client) OpenDoor(ctx context.Context, doorID int) (bool, error) {
	return c.setDoorStatus(ctx, doorID, DoorStatusOpened)
}

// CloseDoor sends a close command unless the door is already closed or
// credibly closing. It reports whether a command was sent.
func (c *Client) CloseDoor(ctx context.Context, doorID int) (bool, error) {
	return c.setDoorStatus(ctx, doorID, DoorStatusClosed)
}

func (c *Client) setDoorStatus(ctx context.Context, doorID int, target DoorStatus) (bool, error) {
	if target == DoorStatusUndefined {
		return false, nil
	}

	info, err := c.Info(ctx)
	if err != nil {
		return false, err
	}

	transition := DoorStatusOpening
	if target == DoorStatusClosed {
		transition = DoorStatusClosing
	}

	statuses := c.doorStatuses(info, c.comparison == CompareTransitional)
	current, ok := statuses[doorID]

	// Door is unknown, not configured, already in the desired state or
	// already moving toward it.
	if !ok || current == target || current == transition {
		return false, nil
	}

	if _, err := c.activate(ctx, doorID, info); err != nil {
		return false, err
	}

	c.mu.Lock()
	c.transitions[doorID] = doorTransition{
		doorID:     doorID,
		activated:  c.now(),
		transition: transition,
		target:     target,
	}
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Debug("door command sent", "door", doorID, "target", target)
	}

	return true, nil
}

// DoorStatuses returns the status of every configured door. When
// useTransitional is true, a door recently commanded open or closed is
// reported as opening or closing until the device catches up or the
// transition times out.
func (c *Client) DoorStatuses(ctx context.Context, useTransitional bool) (map[int]DoorStatus, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return nil, err
	}
	return c.doorStatuses(info, useTransitional), nil
}

func (c *Client) doorStatuses(info *InfoResponse, useTransitional bool) map[int]DoorStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Purge expired transitions before use.
	for doorID, tr := range c.transitions {
		if c.now().Sub(tr.activated) >= c.transitionTimeout {
			delete(c.transitions, doorID)
		}
	}

	result := make(map[int]DoorStatus)
	for _, door := range info.ConfiguredDoors() {
		tr, ok := c.transitions[door.DoorID]
		if useTransitional && ok && tr.target != door.Status {
			result[door.DoorID] = tr.transition
		} else {
			result[door.DoorID] = door.Status
		}
	}
	return result
}
