package interop

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rivulet-dev/rivulet/pkg/signal"
)

// Messages adapts a WebSocket connection into a signal of its incoming
// message payloads. The signal completes when the peer closes the
// connection normally (or goes away) and fails with the read error on
// anything else.
//
// A connection supports a single concurrent reader, so observe the
// result once, or wrap it in signal.Share to fan the messages out.
// Disposing the observation unblocks the read loop by expiring the
// connection's read deadline; the connection itself stays open for the
// caller to close.
func Messages(conn *websocket.Conn) signal.Signal[[]byte, error] {
	return signal.New(func(obs signal.Observer[[]byte, error]) signal.Disposable {
		var stopped atomic.Bool
		go func() {
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					if stopped.Load() {
						return
					}
					if websocket.IsCloseError(err,
						websocket.CloseNormalClosure,
						websocket.CloseGoingAway) {
						obs.SendCompleted()
					} else {
						obs.SendFailed(err)
					}
					return
				}
				if stopped.Load() {
					return
				}
				obs.SendNext(msg)
			}
		}()
		return signal.NewDisposable(func() {
			stopped.Store(true)
			conn.SetReadDeadline(time.Now())
		})
	})
}

// SendTo observes the signal and writes each element to the WebSocket
// connection as a binary message. Completion sends a normal close
// frame; a failure sends a close frame carrying the failure text. Write
// errors stop the subscription.
func SendTo[F error](conn *websocket.Conn, s signal.Signal[[]byte, F]) signal.Disposable {
	var broken atomic.Bool
	serial := signal.NewSerialDisposable()
	sub := s.Observe(signal.NewObserver(
		func(msg []byte) {
			if broken.Load() {
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				broken.Store(true)
				serial.Dispose()
			}
		},
		func(f F) {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, error(f).Error()))
		},
		func() {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		},
	))
	serial.Swap(sub)
	return serial
}
