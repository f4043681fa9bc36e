package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// MainnetWSEndpoint Hyperliquid 主网 websocket 地址。
	MainnetWSEndpoint = "wss://api.hyperliquid.xyz/ws"
	// TestnetWSEndpoint Hyperliquid 测试网 websocket 地址。
	TestnetWSEndpoint = "wss://api.hyperliquid-testnet.xyz/ws"
)

// WS 订阅 allMids 频道并缓存最新 mid；读循环失败即返回，由调用方决定重连。
type WS struct {
	Endpoint string
	Dialer   *websocket.Dialer

	mu   sync.RWMutex
	mids map[string]float64
}

func NewWS(network string) *WS {
	endpoint := TestnetWSEndpoint
	if network == "mainnet" {
		endpoint = MainnetWSEndpoint
	}
	return &WS{
		Endpoint: endpoint,
		Dialer:   websocket.DefaultDialer,
		mids:     make(map[string]float64),
	}
}

// Mid 返回缓存的最新 mid；尚未收到该资产行情时第二个返回值为 false。
func (w *WS) Mid(asset string) (float64, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	px, ok := w.mids[asset]
	return px, ok
}

// Run 连接并持续读取 allMids 推送；连接断开或 ctx 结束时返回。
func (w *WS) Run(ctx context.Context) error {
	conn, _, err := w.Dialer.DialContext(ctx, w.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", w.Endpoint, err)
	}
	defer conn.Close()

	sub := map[string]any{
		"method":       "subscribe",
		"subscription": map[string]string{"type": "allMids"},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe allMids: %w", err)
	}

	// ctx 结束时关闭连接，促使 ReadMessage 尽快退出。
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		mids, err := ParseAllMids(message)
		if err != nil || len(mids) == 0 {
			continue // 心跳、订阅回执等非行情消息
		}
		w.mu.Lock()
		for coin, px := range mids {
			w.mids[coin] = px
		}
		w.mu.Unlock()
	}
}

type wsEnvelope struct {
	Channel string `json:"channel"`
	Data    struct {
		Mids map[string]string `json:"mids"`
	} `json:"data"`
}

// ParseAllMids 解析 allMids 推送；非该频道的消息返回空映射。
func ParseAllMids(message []byte) (map[string]float64, error) {
	var env wsEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		return nil, err
	}
	if env.Channel != "allMids" {
		return nil, nil
	}
	mids := make(map[string]float64, len(env.Data.Mids))
	for coin, s := range env.Data.Mids {
		px, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("parse mid for %s: %w", coin, err)
		}
		mids[coin] = px
	}
	return mids, nil
}
