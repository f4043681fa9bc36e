package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	// MainnetAPIURL Hyperliquid 主网 REST 地址。
	MainnetAPIURL = "https://api.hyperliquid.xyz"
	// TestnetAPIURL Hyperliquid 测试网 REST 地址。
	TestnetAPIURL = "https://api.hyperliquid-testnet.xyz"
)

// Client 封装 Hyperliquid 公共 info 端点；HTTPClient 可注入 httptest，默认不发真实请求。
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    RateLimiter
}

// NewClient 按网络名构造客户端（"mainnet" 之外一律指向测试网）。
func NewClient(network string) *Client {
	base := TestnetAPIURL
	if network == "mainnet" {
		base = MainnetAPIURL
	}
	return &Client{
		BaseURL:    base,
		HTTPClient: NewDefaultHTTPClient(),
		Limiter:    NewTokenBucketLimiter(5, 10),
	}
}

// NewDefaultHTTPClient 提供一个带超时的 http.Client。
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// AllMids 调用 /info {"type":"allMids"}，返回各资产 mid。
func (c *Client) AllMids(ctx context.Context) (map[string]float64, error) {
	var raw map[string]string
	if err := c.postInfo(ctx, map[string]string{"type": "allMids"}, &raw); err != nil {
		return nil, err
	}
	mids := make(map[string]float64, len(raw))
	for coin, s := range raw {
		px, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("parse mid for %s: %w", coin, err)
		}
		mids[coin] = px
	}
	return mids, nil
}

// MidPrice 返回单个资产的 mid。
func (c *Client) MidPrice(ctx context.Context, asset string) (float64, error) {
	mids, err := c.AllMids(ctx)
	if err != nil {
		return 0, err
	}
	px, ok := mids[asset]
	if !ok {
		return 0, fmt.Errorf("no mid for asset %s", asset)
	}
	return px, nil
}

// ClearinghouseState /info {"type":"clearinghouseState"} 响应中本策略关心的字段。
type ClearinghouseState struct {
	AssetPositions []AssetPosition `json:"assetPositions"`
}

type AssetPosition struct {
	Position struct {
		Coin string `json:"coin"`
		Szi  string `json:"szi"` // 有符号仓位（基础资产计）
	} `json:"position"`
}

// PositionSize 查询账户在指定资产上的有符号仓位；无持仓返回 0。
func (c *Client) PositionSize(ctx context.Context, user, asset string) (float64, error) {
	var state ClearinghouseState
	req := map[string]string{"type": "clearinghouseState", "user": user}
	if err := c.postInfo(ctx, req, &state); err != nil {
		return 0, err
	}
	for _, ap := range state.AssetPositions {
		if ap.Position.Coin != asset {
			continue
		}
		szi, err := strconv.ParseFloat(ap.Position.Szi, 64)
		if err != nil {
			return 0, fmt.Errorf("parse szi for %s: %w", asset, err)
		}
		return szi, nil
	}
	return 0, nil
}

func (c *Client) postInfo(ctx context.Context, body any, out any) error {
	if c == nil || c.HTTPClient == nil {
		return fmt.Errorf("http client not set")
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/info", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("info status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
