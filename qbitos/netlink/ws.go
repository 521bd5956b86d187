package netlink

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"qbit/qbitos/event"
)

// Inbound message envelope. Bitmap fields are optional; widths accompany
// the base64 payloads, heights default to the standard element height.
type wsMessage struct {
	Type string `json:"type"`

	Sender string `json:"sender"`
	Text   string `json:"text"`

	SenderBitmap       string `json:"senderBitmap"`
	SenderBitmapWidth  uint16 `json:"senderBitmapWidth"`
	SenderBitmapHeight uint16 `json:"senderBitmapHeight"`
	TextBitmap         string `json:"textBitmap"`
	TextBitmapWidth    uint16 `json:"textBitmapWidth"`
	TextBitmapHeight   uint16 `json:"textBitmapHeight"`

	UserName string `json:"userName"`
}

const defaultBitmapHeight = 16

type wsClient struct {
	t *Task

	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSClient(t *Task) *wsClient { return &wsClient{t: t} }

func (c *wsClient) run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			c.close()
			return
		default:
		}

		if !c.t.link.Up() {
			sleepMs(wsReconnectMs, stop)
			continue
		}
		connected, err := c.connectAndServe(stop)
		if err != nil {
			c.t.logf("netlink: ws: %v", err)
		}
		if connected {
			// Only an established link that dropped is worth an event;
			// failed dials would flood the banner.
			c.t.conn.Clear(event.BitWS)
			c.t.out.SendOrRelease(event.NetworkEvent{Kind: event.WSStatus})
		}
		sleepMs(wsReconnectMs, stop)
	}
}

func (c *wsClient) connectAndServe(stop <-chan struct{}) (bool, error) {
	v := c.t.set.Snapshot()
	if v.WSHost == "" {
		return false, nil
	}
	u := url.URL{
		Scheme: "ws",
		Host:   v.WSHost + ":" + strconv.Itoa(int(v.WSPort)),
		Path:   "/device",
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", u.String(), err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer c.close()

	c.t.conn.Set(event.BitWS)
	c.t.out.SendOrRelease(event.NetworkEvent{Kind: event.WSStatus, Connected: true})
	c.send(c.t.registration())

	for {
		select {
		case <-stop:
			return true, nil
		default:
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("read: %w", err)
		}
		c.handle(data)
	}
}

func (c *wsClient) handle(data []byte) {
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.t.logf("netlink: ws: bad message: %v", err)
		return
	}

	switch msg.Type {
	case "poke":
		e, err := decodePoke(&msg)
		if err != nil {
			c.t.logf("netlink: ws: poke degraded: %v", err)
		}
		if !c.t.out.SendOrRelease(e) {
			c.t.logf("netlink: ws: queue full, poke dropped")
		}

	case "claim_request":
		c.t.out.SendOrRelease(event.NetworkEvent{Kind: event.ClaimRequest, Sender: msg.UserName})

	default:
		c.t.logf("netlink: ws: unknown type %q", msg.Type)
	}
}

// decodePoke builds the event, decoding bitmap payloads here in the producer
// so the display task never allocates. The returned event owns the buffers.
// A bad bitmap payload degrades the event to text-only instead of dropping
// it; the error reports what was discarded.
func decodePoke(msg *wsMessage) (event.NetworkEvent, error) {
	e := event.NetworkEvent{Kind: event.Poke, Sender: msg.Sender, Text: msg.Text}

	sb, err := decodeBitmap(msg.SenderBitmap, msg.SenderBitmapWidth, msg.SenderBitmapHeight)
	if err != nil {
		return e, fmt.Errorf("sender bitmap: %w", err)
	}
	tb, err := decodeBitmap(msg.TextBitmap, msg.TextBitmapWidth, msg.TextBitmapHeight)
	if err != nil {
		sb.Release()
		return e, fmt.Errorf("text bitmap: %w", err)
	}
	if sb != nil || tb != nil {
		e.Kind = event.PokeBitmap
		e.SenderBmp, e.TextBmp = sb, tb
	}
	return e, nil
}

func decodeBitmap(b64 string, width, height uint16) (*event.Bitmap, error) {
	if b64 == "" {
		return nil, nil
	}
	if width == 0 {
		return nil, fmt.Errorf("missing width")
	}
	if height == 0 {
		height = defaultBitmapHeight
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	need := int(width) * int((height+7)/8)
	if len(data) < need {
		return nil, fmt.Errorf("payload %d bytes, need %d", len(data), need)
	}
	return &event.Bitmap{Data: data, Width: width, Height: height}, nil
}

func (c *wsClient) send(v map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if err := c.conn.WriteJSON(v); err != nil {
		c.t.logf("netlink: ws: write: %v", err)
	}
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func sleepMs(ms int, stop <-chan struct{}) {
	select {
	case <-stop:
	case <-time.After(time.Duration(ms) * time.Millisecond):
	}
}
