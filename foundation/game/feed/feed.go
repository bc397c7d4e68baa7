// Package feed maintains the client connection to the upstream block feed
// and normalizes new block messages into observations. Delivery upstream is
// at-least-once and possibly out of order; the engine is responsible for
// discarding stale or duplicate observations.
package feed

import (
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Observation represents one reported actual value from the external feed.
type Observation struct {
	Key         string
	Height      uint64
	ActualValue uint
	ObservedAt  time.Time
}

// EventHandler defines a function that is called when events occur while
// consuming the feed.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to run the feed client.
type Config struct {
	URL           string
	ReconnectWait time.Duration
	EvHandler     EventHandler
}

// Client consumes the upstream websocket and delivers observations on a
// channel. The connection is re-established after a delay whenever it drops.
type Client struct {
	url           string
	reconnectWait time.Duration
	evHandler     EventHandler
	obs           chan Observation
	shut          chan struct{}
	wg            sync.WaitGroup

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewClient constructs a client for the specified feed url.
func NewClient(cfg Config) *Client {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	return &Client{
		url:           cfg.URL,
		reconnectWait: cfg.ReconnectWait,
		evHandler:     ev,
		obs:           make(chan Observation, 16),
		shut:          make(chan struct{}),
	}
}

// Run starts the goroutine maintaining the upstream connection.
func (c *Client) Run() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.evHandler("feed: run: G started: url[%s]", c.url)
		defer c.evHandler("feed: run: G completed")

		for {
			if c.isShutdown() {
				return
			}

			if err := c.consume(); err != nil {
				c.evHandler("feed: run: consume: ERROR: %s", err)
			}

			select {
			case <-time.After(c.reconnectWait):
			case <-c.shut:
				return
			}
		}
	}()
}

// Shutdown terminates the goroutine maintaining the upstream connection.
func (c *Client) Shutdown() {
	c.evHandler("feed: shutdown: started")
	defer c.evHandler("feed: shutdown: completed")

	close(c.shut)

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.mu.Unlock()

	c.wg.Wait()
	close(c.obs)
}

// Observations returns the channel observations are delivered on. The
// channel is closed on shutdown.
func (c *Client) Observations() <-chan Observation {
	return c.obs
}

// =============================================================================

// blockMessage matches the shape of a new block notification from a
// mempool style feed.
type blockMessage struct {
	Block *struct {
		ID        string `json:"id"`
		Height    uint64 `json:"height"`
		TxCount   uint   `json:"tx_count"`
		Timestamp int64  `json:"timestamp"`
	} `json:"block"`
}

// consume dials the feed, subscribes to block events and forwards
// observations until the connection drops.
func (c *Client) consume() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.evHandler("feed: consume: connected")

	// Ask the feed for new block notifications.
	sub := struct {
		Action string   `json:"action"`
		Data   []string `json:"data"`
	}{
		Action: "want",
		Data:   []string{"blocks"},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}

	for {
		var msg blockMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		// Messages without a block section carry feed chatter we
		// don't care about.
		if msg.Block == nil {
			continue
		}

		key := msg.Block.ID
		if key == "" {
			key = strconv.FormatUint(msg.Block.Height, 10)
		}

		obs := Observation{
			Key:         key,
			Height:      msg.Block.Height,
			ActualValue: msg.Block.TxCount,
			ObservedAt:  time.Unix(msg.Block.Timestamp, 0).UTC(),
		}

		select {
		case c.obs <- obs:
		case <-c.shut:
			return nil
		}
	}
}

// isShutdown is used to test if a shutdown has been signaled.
func (c *Client) isShutdown() bool {
	select {
	case <-c.shut:
		return true
	default:
		return false
	}
}
