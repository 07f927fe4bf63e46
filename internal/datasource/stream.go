package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/moto-picks/internal/metrics"
)

// StreamEvent is a live timing push message. Payload shape depends on Type.
type StreamEvent struct {
	Type      string          `json:"type"`
	EventID   uuid.UUID       `json:"eventId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Stream event types that affect prediction validity.
const (
	StreamEventQualifyingUpdate = "qualifying_update"
	StreamEventHandicapChange   = "handicap_change"
	StreamEventEntryListChange  = "entry_list_change"
	StreamEventRaceComplete     = "race_complete"
	StreamEventHeartbeat        = "heartbeat"
)

// StreamHandler is called for each received stream event
type StreamHandler func(event StreamEvent) error

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// LiveTimingStream maintains a WebSocket subscription to the live timing feed
// and dispatches events to registered handlers.
type LiveTimingStream struct {
	streamURL       string
	apiKey          string
	reconnectConfig ReconnectConfig
	logger          *logrus.Logger

	mu              sync.RWMutex
	conn            *websocket.Conn
	isConnected     bool
	handlers        []StreamHandler
	lastMessageTime time.Time
}

// NewLiveTimingStream creates a new live timing stream subscriber
func NewLiveTimingStream(streamURL, apiKey string, logger *logrus.Logger) *LiveTimingStream {
	return &LiveTimingStream{
		streamURL:       streamURL,
		apiKey:          apiKey,
		reconnectConfig: DefaultReconnectConfig(),
		handlers:        make([]StreamHandler, 0),
		logger:          logger,
	}
}

// AddHandler registers a stream event handler. Handlers must be registered
// before Run is called.
func (s *LiveTimingStream) AddHandler(handler StreamHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Run connects and consumes the stream until ctx is cancelled, reconnecting
// with exponential backoff on connection loss.
func (s *LiveTimingStream) Run(ctx context.Context) error {
	backoff := s.reconnectConfig.InitialBackoff
	retries := 0

	for {
		if err := s.connect(ctx); err != nil {
			retries++
			if retries > s.reconnectConfig.MaxRetries {
				return fmt.Errorf("stream gave up after %d connection attempts: %w", retries-1, err)
			}

			s.logger.WithError(err).WithFields(logrus.Fields{
				"attempt": retries,
				"backoff": backoff.String(),
			}).Warn("Stream connection failed, retrying")
			metrics.RecordStreamReconnect()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}

			backoff = time.Duration(float64(backoff) * s.reconnectConfig.BackoffMultiplier)
			if backoff > s.reconnectConfig.MaxBackoff {
				backoff = s.reconnectConfig.MaxBackoff
			}
			continue
		}

		// Connected; a completed read loop means the connection dropped.
		retries = 0
		backoff = s.reconnectConfig.InitialBackoff
		s.readMessages(ctx)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		metrics.RecordStreamReconnect()
	}
}

func (s *LiveTimingStream) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	header := map[string][]string{
		"Authorization": {fmt.Sprintf("Bearer %s", s.apiKey)},
	}

	conn, resp, err := dialer.DialContext(ctx, s.streamURL, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()
	s.mu.Unlock()

	metrics.UpdateStreamConnected(true)
	s.logger.WithField("url", s.streamURL).Info("Live timing stream connected")
	return nil
}

// readMessages consumes the connection until it drops or ctx is cancelled
func (s *LiveTimingStream) readMessages(ctx context.Context) {
	defer func() {
		s.closeConn()
		metrics.UpdateStreamConnected(false)
	}()

	// Unblock the blocking read when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.closeConn()
		case <-done:
		}
	}()

	for {
		var event StreamEvent
		if err := s.conn.ReadJSON(&event); err != nil {
			if ctx.Err() == nil {
				s.logger.WithError(err).Warn("Stream read failed")
			}
			return
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		metrics.RecordStreamEvent(event.Type)
		if event.Type == StreamEventHeartbeat {
			continue
		}

		s.mu.RLock()
		handlers := s.handlers
		s.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler(event); err != nil {
				s.logger.WithError(err).WithField("event_type", event.Type).Warn("Stream handler error")
			}
		}
	}
}

// IsConnected returns whether the stream is connected
func (s *LiveTimingStream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received message
func (s *LiveTimingStream) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

func (s *LiveTimingStream) closeConn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		s.conn.Close()
	}
	s.isConnected = false
}
