package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"coinboard/internal/market"
)

const (
	DefaultWSBase = "wss://stream.binance.com:9443"

	wsHandshakeTimeout = 10 * time.Second
	wsReadTimeout      = 60 * time.Second
	wsWriteTimeout     = 10 * time.Second
	wsPingInterval     = 30 * time.Second
	wsReconnectMin     = 1 * time.Second
	wsReconnectMax     = 30 * time.Second
)

// KlineStream subscribes to the per-minute kline feed for one symbol
// and delivers each forming bucket as a LiveUpdate. Lost connections
// are retried with exponential backoff; consumers only observe a gap
// in delivery, never an error.
type KlineStream struct {
	url     string
	logger  *slog.Logger
	updates chan market.LiveUpdate
}

// NewKlineStream creates a stream for one symbol. wsBase may be empty
// to use the public endpoint.
func NewKlineStream(wsBase, symbol string, logger *slog.Logger) *KlineStream {
	if wsBase == "" {
		wsBase = DefaultWSBase
	}
	return &KlineStream{
		url:     fmt.Sprintf("%s/ws/%s@kline_1m", wsBase, strings.ToLower(symbol)),
		logger:  logger.With("component", "kline-stream"),
		updates: make(chan market.LiveUpdate, 100),
	}
}

// Updates returns the delivery channel. It is closed when Run
// returns.
func (s *KlineStream) Updates() <-chan market.LiveUpdate { return s.updates }

// Run connects and consumes until the context is cancelled,
// reconnecting on every failure. Blocks; run it in its own goroutine.
func (s *KlineStream) Run(ctx context.Context) {
	defer close(s.updates)

	reconnectDelay := wsReconnectMin

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := s.connect(ctx)
		if err == nil {
			reconnectDelay = wsReconnectMin
			continue
		}
		if ctx.Err() != nil {
			return
		}

		s.logger.Warn("stream disconnected, reconnecting",
			"error", err,
			"delay", reconnectDelay,
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}

		reconnectDelay *= 2
		if reconnectDelay > wsReconnectMax {
			reconnectDelay = wsReconnectMax
		}
	}
}

// connect establishes a single connection and reads until it drops.
func (s *KlineStream) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}

	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	s.logger.Info("stream connected", "url", s.url)

	conn.SetPongHandler(func(string) error { return nil })
	// The exchange pings from its side; answer so it keeps the
	// connection open.
	conn.SetPingHandler(func(payload string) error {
		return conn.WriteControl(websocket.PongMessage, []byte(payload), time.Now().Add(wsWriteTimeout))
	})

	return s.readLoop(ctx, conn)
}

func (s *KlineStream) readLoop(ctx context.Context, conn *websocket.Conn) error {
	messages := make(chan []byte, 100)
	readErr := make(chan error, 1)

	go func() {
		defer close(messages)
		for {
			conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				select {
				case readErr <- err:
				default:
				}
				return
			}
			select {
			case messages <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-readErr:
			return fmt.Errorf("read error: %w", err)

		case msg := <-messages:
			update, ok := s.parseUpdate(msg)
			if !ok {
				continue
			}
			select {
			case s.updates <- update:
			case <-ctx.Done():
				return nil
			}

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
		}
	}
}

// parseUpdate reduces one stream message to a LiveUpdate. Anything
// that is not a well-formed kline event is skipped.
func (s *KlineStream) parseUpdate(msg []byte) (market.LiveUpdate, bool) {
	var event klineEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		s.logger.Debug("skipping unparseable message", "error", err)
		return market.LiveUpdate{}, false
	}
	if event.EventType != "kline" {
		return market.LiveUpdate{}, false
	}

	closePrice, err := decimal.NewFromString(event.Kline.Close)
	if err != nil {
		s.logger.Debug("skipping kline with bad close", "close", event.Kline.Close, "error", err)
		return market.LiveUpdate{}, false
	}

	return market.LiveUpdate{
		OpenTime: time.UnixMilli(event.Kline.OpenTime),
		Close:    closePrice,
	}, true
}
