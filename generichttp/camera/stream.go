package camera

import (
	"bytes"
	"context"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nasa-jpl/gxcam/gx"
)

const boundary = "frame"

// jpegFrames subscribes to the hub and calls send with each frame encoded as
// a JPEG, until ctx is done, send fails or the hub stops
func (h *HTTPWrapper) jpegFrames(ctx context.Context, scale float64, send func([]byte) error) error {
	ch, stop, err := h.hub.Subscribe()
	if err != nil {
		return err
	}
	defer stop()
	buf := &bytes.Buffer{}
	for {
		var f *gx.Frame
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case f, ok = <-ch:
			if !ok {
				return h.hub.Err()
			}
		}
		img, err := h.render(f, scale)
		if err != nil {
			return err
		}
		buf.Reset()
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: h.opts.JPEGQuality}); err != nil {
			return err
		}
		if err := send(buf.Bytes()); err != nil {
			return err
		}
	}
}

// StreamMJPEG serves live view as multipart/x-mixed-replace JPEGs, which
// browsers show in an <img> tag.  The scale query parameter resizes frames.
func (h *HTTPWrapper) StreamMJPEG(w http.ResponseWriter, r *http.Request) {
	scale, err := parseScale(r.URL.Query().Get("scale"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "multipart/x-mixed-replace;boundary="+boundary)
	mw := multipart.NewWriter(w)
	mw.SetBoundary(boundary)
	flusher, _ := w.(http.Flusher)
	started := false
	err = h.jpegFrames(r.Context(), scale, func(b []byte) error {
		started = true
		iw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":   []string{"image/jpeg"},
			"Content-Length": []string{strconv.Itoa(len(b))},
		})
		if err != nil {
			return err
		}
		if _, err = iw.Write(b); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil && !started {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		http.Error(w, err.Error(), errStatus(err))
	}
}

// StreamWS serves live view over a websocket, one binary message per JPEG.
// Messages from the client are discarded; closing the socket ends the stream.
func (h *HTTPWrapper) StreamWS(w http.ResponseWriter, r *http.Request) {
	scale, err := parseScale(r.URL.Query().Get("scale"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var upgrader websocket.Upgrader
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err = h.jpegFrames(ctx, scale, func(b []byte) error {
		conn.SetWriteDeadline(time.Now().Add(h.opts.FrameTimeout))
		return conn.WriteMessage(websocket.BinaryMessage, b)
	})
	code, reason := websocket.CloseNormalClosure, ""
	if err != nil {
		code, reason = websocket.CloseInternalServerErr, err.Error()
		// control frames carry at most 125 bytes
		if len(reason) > 120 {
			reason = reason[:120]
		}
	}
	msg := websocket.FormatCloseMessage(code, reason)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(100*time.Millisecond))
}
