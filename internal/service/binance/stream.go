package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"StructSnap/pkg/logger"
)

// MarkPriceStream keeps a live mark price per symbol from the Binance futures
// combined stream. CurrentPrice serves from the in-memory cache; a symbol
// without a fresh update yet returns an error and the caller falls back to
// the last close.
type MarkPriceStream struct {
	wsURL          string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	staleAfter     time.Duration
	log            *logger.Logger

	connMu    sync.Mutex
	conn      *websocket.Conn
	connected bool

	mu     sync.RWMutex
	prices map[string]markPrice
}

type markPrice struct {
	price float64
	at    time.Time
}

type StreamOption func(*MarkPriceStream)

// WithStreamURL overrides the websocket host.
func WithStreamURL(u string) StreamOption {
	return func(s *MarkPriceStream) {
		if u != "" {
			s.wsURL = u
		}
	}
}

// WithStaleAfter sets how old a cached price may be before it stops serving.
func WithStaleAfter(d time.Duration) StreamOption {
	return func(s *MarkPriceStream) {
		if d > 0 {
			s.staleAfter = d
		}
	}
}

// WithReconnectDelay sets the pause between reconnect attempts.
func WithReconnectDelay(d time.Duration) StreamOption {
	return func(s *MarkPriceStream) {
		if d > 0 {
			s.reconnectDelay = d
		}
	}
}

// NewMarkPriceStream creates the stream for the given symbols.
func NewMarkPriceStream(symbols []string, log *logger.Logger, opts ...StreamOption) *MarkPriceStream {
	s := &MarkPriceStream{
		wsURL:          "wss://fstream.binance.com",
		symbols:        symbols,
		reconnectDelay: 5 * time.Second,
		pingInterval:   3 * time.Minute,
		staleAfter:     2 * time.Minute,
		log:            log,
		prices:         make(map[string]markPrice),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect dials the combined mark-price stream.
func (s *MarkPriceStream) Connect(ctx context.Context) error {
	streams := make([]string, len(s.symbols))
	for i, sym := range s.symbols {
		streams[i] = strings.ToLower(sym) + "@markPrice"
	}
	u := fmt.Sprintf("%s/stream?streams=%s", s.wsURL, strings.Join(streams, "/"))
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("markprice connect: %w", err)
	}
	s.connMu.Lock()
	s.conn = conn
	s.connected = true
	s.connMu.Unlock()
	s.log.Info("markprice stream connected", logger.Int("symbols", len(s.symbols)))
	return nil
}

// currentConn snapshots the connection for the read and ping loops.
func (s *MarkPriceStream) currentConn() *websocket.Conn {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.conn
}

// Start launches the read and ping loops with automatic reconnect.
func (s *MarkPriceStream) Start(ctx context.Context) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}
	go s.pingLoop(ctx)
	go s.readLoop(ctx)
	return nil
}

func (s *MarkPriceStream) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if conn := s.currentConn(); conn != nil {
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}
}

type combinedFrame struct {
	Stream string          `json:"stream"`
	Data   markPriceUpdate `json:"data"`
}

type markPriceUpdate struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	Price  string `json:"p"`
	TimeMs int64  `json:"E"`
}

func (s *MarkPriceStream) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		conn := s.currentConn()
		if conn == nil {
			if !s.reconnect(ctx) {
				return
			}
			continue
		}
		_, b, err := conn.ReadMessage()
		if err != nil {
			s.log.Warn("markprice read failed", logger.Error(err))
			if !s.reconnect(ctx) {
				return
			}
			continue
		}
		var frame combinedFrame
		if err := json.Unmarshal(b, &frame); err != nil {
			// ignore non-data frames
			continue
		}
		if frame.Data.Event != "markPriceUpdate" || frame.Data.Symbol == "" {
			continue
		}
		price, err := parsePrice(frame.Data.Price)
		if err != nil {
			continue
		}
		s.mu.Lock()
		s.prices[frame.Data.Symbol] = markPrice{price: price, at: time.Now()}
		s.mu.Unlock()
	}
}

func (s *MarkPriceStream) reconnect(ctx context.Context) bool {
	s.connMu.Lock()
	s.connected = false
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()
	select {
	case <-ctx.Done():
		return false
	case <-time.After(s.reconnectDelay):
	}
	if err := s.Connect(ctx); err != nil {
		s.log.Warn("markprice reconnect failed", logger.Error(err))
		return true // keep trying
	}
	return true
}

// CurrentPrice returns the cached mark price for symbol.
func (s *MarkPriceStream) CurrentPrice(_ context.Context, symbol string) (float64, error) {
	s.mu.RLock()
	mp, ok := s.prices[symbol]
	s.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("no mark price for %s", symbol)
	}
	if time.Since(mp.at) > s.staleAfter {
		return 0, fmt.Errorf("stale mark price for %s", symbol)
	}
	return mp.price, nil
}

// IsConnected indicates status.
func (s *MarkPriceStream) IsConnected() bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.connected
}

// Close closes the WS connection.
func (s *MarkPriceStream) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.connected = false
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

func parsePrice(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("non-positive price %q", raw)
	}
	return v, nil
}
