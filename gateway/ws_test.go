package gateway

import "testing"

func TestParseAllMids(t *testing.T) {
	msg := []byte(`{"channel":"allMids","data":{"mids":{"BTC":"50123.5","ETH":"2456.1"}}}`)
	mids, err := ParseAllMids(msg)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if mids["BTC"] != 50123.5 || mids["ETH"] != 2456.1 {
		t.Fatalf("unexpected mids: %v", mids)
	}
}

func TestParseAllMids_IgnoresOtherChannels(t *testing.T) {
	for _, msg := range []string{
		`{"channel":"subscriptionResponse","data":{}}`,
		`{"channel":"pong"}`,
	} {
		mids, err := ParseAllMids([]byte(msg))
		if err != nil {
			t.Fatalf("parse %s: %v", msg, err)
		}
		if len(mids) != 0 {
			t.Fatalf("expected empty mids for %s, got %v", msg, mids)
		}
	}
}

func TestParseAllMids_BadNumber(t *testing.T) {
	msg := []byte(`{"channel":"allMids","data":{"mids":{"BTC":"not-a-number"}}}`)
	if _, err := ParseAllMids(msg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWSMidCache(t *testing.T) {
	ws := NewWS("testnet")
	if _, ok := ws.Mid("BTC"); ok {
		t.Fatal("cache should start empty")
	}
	ws.mu.Lock()
	ws.mids["BTC"] = 50000
	ws.mu.Unlock()
	if px, ok := ws.Mid("BTC"); !ok || px != 50000 {
		t.Fatalf("got %v/%v", px, ok)
	}
}
