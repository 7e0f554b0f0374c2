package bridge

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"sync"

	"github.com/google/uuid"
)

// ErrLostConnection reports that the app process went away mid-request.
var ErrLostConnection = errors.New("Lost connection to SeedCanvas app")

// Client is the tool-host side of the bridge. One request is in flight per
// connection at a time; the server answers in order.
type Client struct {
	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// Dial connects to the app's bridge socket. Fails when the app is not
// running.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// CanvasRead asks the canvas client for its current state.
func (c *Client) CanvasRead(params any) (string, error) {
	return c.call(MethodCanvasRead, params)
}

// CanvasBatch asks the canvas client to apply a batch of operations.
func (c *Client) CanvasBatch(params any) (string, error) {
	return c.call(MethodCanvasBatch, params)
}

func (c *Client) call(method string, params any) (string, error) {
	rawParams, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	frame, err := json.Marshal(Request{
		ID:     uuid.New().String(),
		Method: method,
		Params: rawParams,
	})
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.conn.Write(append(frame, '\n')); err != nil {
		return "", ErrLostConnection
	}
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return "", ErrLostConnection
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", errors.New(*resp.Error)
	}
	if resp.Result == nil {
		return "", errors.New("bridge response carries neither result nor error")
	}
	return *resp.Result, nil
}
