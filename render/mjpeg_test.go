package render

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMJPEGStream(t *testing.T) {

	sink := NewJPEGSink(DefaultOptions())

	srv := httptest.NewServer(sink)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Fatalf("unexpected content type %q", ct)
	}

	deadline := time.Now().Add(2 * time.Second)

	for sink.Subscribers() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("client never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	img := blankMat(120, 160)
	defer img.Close()

	if err := sink.Draw(&Batch{Seq: 1, SpeedMPS: -1, Frame: img}); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	rd := bufio.NewReader(resp.Body)

	boundary, err := rd.ReadString('\n')
	if err != nil || boundary != "--frame\r\n" {
		t.Fatalf("expected boundary, got %q (%v)", boundary, err)
	}

	header, _ := rd.ReadString('\n')
	if header != "Content-Type: image/jpeg\r\n" {
		t.Errorf("unexpected part header %q", header)
	}

	rd.ReadString('\n')

	soi := make([]byte, 2)
	if _, err := io.ReadFull(rd, soi); err != nil {
		t.Fatalf("reading jpeg: %v", err)
	}

	if soi[0] != 0xFF || soi[1] != 0xD8 {
		t.Errorf("expected JPEG start of image marker, got % x", soi)
	}
}
