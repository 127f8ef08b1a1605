package snapshot

import (
	"io"

	"github.com/go-faster/jx"
)

// WriteJSON dumps s as a JSON object for inspection. Memory and screen are
// base64 encoded.
func WriteJSON(w io.Writer, s *State) error {
	var e jx.Encoder
	EncodeJSON(&e, s)
	_, err := w.Write(append(e.Bytes(), '\n'))
	return err
}

// EncodeJSON writes s as a JSON object to e.
func EncodeJSON(e *jx.Encoder, s *State) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("v", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, v := range s.V {
					e.UInt8(v)
				}
			})
		})
		e.Field("i", func(e *jx.Encoder) { e.UInt16(s.I) })
		e.Field("pc", func(e *jx.Encoder) { e.UInt16(s.PC) })
		e.Field("sp", func(e *jx.Encoder) { e.UInt8(s.SP) })
		e.Field("stack", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, ret := range s.Stack[:s.SP] {
					e.UInt16(ret)
				}
			})
		})
		e.Field("dt", func(e *jx.Encoder) { e.UInt8(s.DT) })
		e.Field("st", func(e *jx.Encoder) { e.UInt8(s.ST) })
		e.Field("keys", func(e *jx.Encoder) { e.UInt16(s.Keys) })
		e.Field("pending_key", func(e *jx.Encoder) {
			if !s.HasPendingKey {
				e.Null()
				return
			}
			e.UInt8(s.PendingKey)
		})
		e.Field("awaiting_register", func(e *jx.Encoder) {
			if !s.Awaiting {
				e.Null()
				return
			}
			e.UInt8(s.AwaitReg)
		})
		e.Field("memory", func(e *jx.Encoder) { e.Base64(s.Memory[:]) })
		e.Field("screen", func(e *jx.Encoder) { e.Base64(s.Screen[:]) })
	})
}
