// Package capture reads NMEA sentences from receiver feeds.
package capture

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultReconnectDelay = 5 * time.Second
	defaultIdleTimeout    = 2 * time.Minute
	maxLineLength         = 64 * 1024
)

// Message represents one captured sentence
type Message struct {
	Source    string
	Sentence  string
	Timestamp time.Time
}

// DialFunc opens a source for reading
type DialFunc func(ctx context.Context, src Source) (io.ReadCloser, error)

// Capture reads from every configured source until stopped
type Capture struct {
	sources        []Source
	verifyChecksum bool
	dial           DialFunc
	reconnectDelay time.Duration
	idleTimeout    time.Duration

	conns    map[string]io.Closer
	msgChan  chan Message
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	mu       sync.Mutex

	checksumFailures atomic.Uint64
}

// New creates a new Capture instance
func New(sources []Source, verifyChecksum bool) *Capture {
	ctx, cancel := context.WithCancel(context.Background())
	return &Capture{
		sources:        sources,
		verifyChecksum: verifyChecksum,
		dial:           Dial,
		reconnectDelay: defaultReconnectDelay,
		idleTimeout:    defaultIdleTimeout,
		conns:          make(map[string]io.Closer),
		msgChan:        make(chan Message, 1000),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start begins reading from all sources
func (c *Capture) Start() error {
	if len(c.sources) == 0 {
		return errors.New("no sources configured")
	}
	for _, src := range c.sources {
		c.wg.Add(1)
		go c.connectToSource(src)
	}
	return nil
}

// Stop closes every source and the message channel
func (c *Capture) Stop() {
	c.stopOnce.Do(func() {
		c.cancel()
		c.mu.Lock()
		for _, conn := range c.conns {
			conn.Close()
		}
		c.mu.Unlock()
		c.wg.Wait()
		close(c.msgChan)
	})
}

// Messages returns the channel for receiving messages
func (c *Capture) Messages() <-chan Message {
	return c.msgChan
}

// ChecksumFailures returns how many sentences were dropped by checksum verification
func (c *Capture) ChecksumFailures() uint64 {
	return c.checksumFailures.Load()
}

// configureTCPKeepalive configures TCP keepalive settings
func configureTCPKeepalive(conn net.Conn, source string) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	if err := tcpConn.SetKeepAlive(true); err != nil {
		log.Printf("Warning: failed to set keepalive for %s: %v", source, err)
	}
	if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
		log.Printf("Warning: failed to set keepalive period for %s: %v", source, err)
	}
}

// handleSuccessfulConnection logs (re)connections and resets the outage clock
func (c *Capture) handleSuccessfulConnection(disconnectTime time.Time, source string) time.Time {
	if disconnectTime.IsZero() {
		log.Printf("Successfully connected to %s", source)
		return time.Time{}
	}
	duration := time.Since(disconnectTime)
	if duration >= 10*time.Second {
		log.Printf("Connection to %s reestablished after %.1f minutes", source, duration.Minutes())
	} else {
		log.Printf("Connection to %s reestablished after a hiccup of %.1f seconds", source, duration.Seconds())
	}
	return time.Time{}
}

// wait sleeps for the reconnect delay. It returns false once stopped.
func (c *Capture) wait() bool {
	select {
	case <-c.ctx.Done():
		return false
	case <-time.After(c.reconnectDelay):
		return true
	}
}

func (c *Capture) connectToSource(src Source) {
	defer c.wg.Done()

	var disconnectTime time.Time
	log.Printf("Attempting to connect to %s...", src)

	for c.ctx.Err() == nil {
		conn, err := c.dial(c.ctx, src)
		if err != nil {
			if disconnectTime.IsZero() {
				disconnectTime = time.Now()
				log.Printf("Failed to connect to %s: %v. Retrying in %s", src, err, c.reconnectDelay)
			}
			if !c.wait() {
				return
			}
			continue
		}

		disconnectTime = c.handleSuccessfulConnection(disconnectTime, src.Raw)

		c.mu.Lock()
		if c.ctx.Err() != nil {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conns[src.Raw] = conn
		c.mu.Unlock()

		err = c.handleConnection(src, conn)

		c.mu.Lock()
		delete(c.conns, src.Raw)
		c.mu.Unlock()

		if c.ctx.Err() != nil {
			return
		}
		disconnectTime = time.Now()
		if err != nil {
			log.Printf("Error from source %s: %v", src, err)
		} else {
			log.Printf("Source %s closed the connection", src)
		}
		if !c.wait() {
			return
		}
	}
}

type deadliner interface {
	SetReadDeadline(t time.Time) error
}

// handleConnection scans conn line by line until it fails or goes idle
func (c *Capture) handleConnection(src Source, conn io.ReadCloser) error {
	defer conn.Close()

	dl, hasDeadline := conn.(deadliner)
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxLineLength)

	for {
		if hasDeadline {
			if err := dl.SetReadDeadline(time.Now().Add(c.idleTimeout)); err != nil {
				log.Printf("Warning: failed to set read deadline for %s: %v", src, err)
			}
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		sentence, ok := CleanLine(scanner.Text())
		if !ok {
			continue
		}
		if c.verifyChecksum && !ValidChecksum(sentence) {
			c.checksumFailures.Add(1)
			continue
		}

		select {
		case c.msgChan <- Message{
			Source:    src.Raw,
			Sentence:  sentence,
			Timestamp: time.Now().UTC(),
		}:
		case <-c.ctx.Done():
			return nil
		}
	}
}
