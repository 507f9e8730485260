package render

import (
	"net/http"
)

// ServeHTTP streams the annotated frames to the client as MJPEG until it
// disconnects
func (j *JPEGSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	frames, cancel := j.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")

	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)

	// send headers now so the client sees the stream before the first frame
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return

		case jpg := <-frames:
			w.Write([]byte("--frame\r\n"))
			w.Write([]byte("Content-Type: image/jpeg\r\n\r\n"))

			if _, err := w.Write(jpg); err != nil {
				return
			}

			w.Write([]byte("\r\n"))

			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
