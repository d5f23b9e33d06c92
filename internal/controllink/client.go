package controllink

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding Options fields are unset.
const (
	defaultRxDepth = 32
	defaultTxDepth = 16
	readChunk      = 256
)

// Options tunes a Client.
type Options struct {
	// RxDepth bounds the channel between the link reader and ProcessMessages.
	RxDepth int
	// TxDepth bounds the outgoing request queue.
	TxDepth int
	Logger  zerolog.Logger
}

// Client owns one control-link connection. A reader goroutine decodes frames
// into a bounded channel drained by ProcessMessages; a writer goroutine sends
// requests queued by EnqueueRequest.
type Client struct {
	conn Connection
	log  zerolog.Logger

	rx    chan *Message
	tx    chan Request
	ready chan struct{}
	done  chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

// NewClient wraps conn. Call Start to begin moving bytes.
func NewClient(conn Connection, opts Options) *Client {
	if opts.RxDepth <= 0 {
		opts.RxDepth = defaultRxDepth
	}
	if opts.TxDepth <= 0 {
		opts.TxDepth = defaultTxDepth
	}
	return &Client{
		conn:  conn,
		log:   opts.Logger,
		rx:    make(chan *Message, opts.RxDepth),
		tx:    make(chan Request, opts.TxDepth),
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Start launches the reader and writer goroutines. Both stop when ctx is
// canceled; the reader also stops on a transport error (see Err).
func (c *Client) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		go c.readLoop(ctx)
		go c.writeLoop(ctx)
	})
}

// EnqueueRequest queues a request without blocking. It returns false when the
// outgoing queue is full.
func (c *Client) EnqueueRequest(kind Kind, payload []byte) bool {
	req := Request{Kind: kind, Payload: append([]byte(nil), payload...)}
	select {
	case c.tx <- req:
		return true
	default:
		txDroppedTotal.WithLabelValues(kind.String()).Inc()
		c.log.Warn().Str("kind", kind.String()).Msg("outgoing queue full, request dropped")
		return false
	}
}

// ProcessMessages delivers the messages that are queued at the time of the
// call to h and returns how many were delivered. It never blocks.
func (c *Client) ProcessMessages(h Handler) int {
	n := len(c.rx)
	delivered := 0
	for i := 0; i < n; i++ {
		select {
		case msg := <-c.rx:
			if !msg.Kind.Known() {
				c.log.Debug().Str("kind", msg.Kind.String()).Msg("ignoring unknown message kind")
				continue
			}
			h.OnMessage(msg.Kind, msg.Payload)
			delivered++
		default:
			return delivered
		}
	}
	return delivered
}

// Ready fires at least once after new messages become available.
func (c *Client) Ready() <-chan struct{} { return c.ready }

// Done is closed when the reader stops.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err returns the transport error that stopped the reader, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.conn.Close() })
	return err
}

func (c *Client) setErr(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
}

func (c *Client) readLoop(ctx context.Context) {
	defer close(c.done)
	dec := NewDecoder()
	buf := make([]byte, readChunk)
	onErr := func(err error) {
		decodeErrorsTotal.Inc()
		c.log.Debug().Err(err).Msg("dropping malformed frame")
	}
	for {
		n, err := c.conn.Read(buf)
		for _, msg := range dec.Decode(buf[:n], onErr) {
			framesTotal.WithLabelValues("rx", msg.Kind.String()).Inc()
			select {
			case c.rx <- msg:
			case <-ctx.Done():
				return
			}
			select {
			case c.ready <- struct{}{}:
			default:
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				c.log.Error().Err(err).Msg("control link read failed")
			}
			c.setErr(err)
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-c.tx:
			frame, err := EncodeFrame(req.Kind, req.Payload)
			if err != nil {
				c.log.Error().Err(err).Str("kind", req.Kind.String()).Msg("cannot encode request")
				continue
			}
			if _, err := c.conn.Write(frame); err != nil {
				c.log.Error().Err(err).Str("kind", req.Kind.String()).Msg("control link write failed")
				c.setErr(err)
				continue
			}
			framesTotal.WithLabelValues("tx", req.Kind.String()).Inc()
		}
	}
}
