package hub

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bvision/go-bvision/alert"
	"github.com/bvision/go-bvision/internal/logger"
	"github.com/bvision/go-bvision/postprocess"
	"github.com/bvision/go-bvision/render"
	"github.com/gorilla/websocket"
)

// connect starts a hub behind a test server and dials one viewer
func connect(t *testing.T, onSpeed SpeedFunc) (*Hub, *websocket.Conn, func()) {

	h := New(onSpeed, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	srv := httptest.NewServer(h)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)

	if err != nil {
		cancel()
		srv.Close()
		t.Fatalf("dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)

	for h.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("viewer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	return h, conn, func() {
		conn.Close()
		cancel()
		srv.Close()
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg Message

	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}

	return msg
}

func TestDrawBroadcast(t *testing.T) {

	h, conn, done := connect(t, nil)
	defer done()

	err := h.Draw(&render.Batch{
		Seq: 7,
		Commands: []render.Command{{
			Box:   postprocess.NewBox(10, 20, 30, 40),
			Label: postprocess.LabelTrafficLightRed,
			Style: render.StyleRedLight,
		}},
		StopSignPresent: true,
		SpeedMPS:        -1,
	})

	if err != nil {
		t.Fatalf("Draw: %v", err)
	}

	msg := readMessage(t, conn)

	if msg.Type != TypeFrame || msg.Frame == nil {
		t.Fatalf("expected frame message, got %+v", msg)
	}

	if msg.Frame.Seq != 7 || !msg.Frame.StopSign || msg.Frame.Speed != nil {
		t.Errorf("unexpected frame %+v", msg.Frame)
	}

	if len(msg.Frame.Boxes) != 1 || msg.Frame.Boxes[0].Style != "red_light" ||
		msg.Frame.Boxes[0].Height != 40 {
		t.Errorf("unexpected boxes %+v", msg.Frame.Boxes)
	}
}

func TestFireBroadcast(t *testing.T) {

	h, conn, done := connect(t, nil)
	defer done()

	ev := alert.NewEvent("s1", 3, postprocess.NewBox(0, 0, 10, 40), time.Now())

	if err := h.Fire(ev); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	msg := readMessage(t, conn)

	if msg.Type != TypeAlert || msg.Alert == nil || msg.Alert.ID != ev.ID.String() {
		t.Errorf("unexpected alert message %+v", msg)
	}
}

func TestInboundSpeed(t *testing.T) {

	speeds := make(chan float64, 1)

	_, conn, done := connect(t, func(mps float64) { speeds <- mps })
	defer done()

	// malformed messages are ignored
	conn.WriteMessage(websocket.TextMessage, []byte("not json"))

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"speed": 12.5}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-speeds:
		if got != 12.5 {
			t.Errorf("expected 12.5, got %f", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("speed sample never delivered")
	}
}
