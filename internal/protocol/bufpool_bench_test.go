package protocol

import (
	"io"
	"testing"

	"github.com/udisondev/robotworld/internal/model"
)

// BenchmarkWriteJSON_State measures the hot path: one response with state.
func BenchmarkWriteJSON_State(b *testing.B) {
	b.ReportAllocs()

	r := model.NewRobot("HAL", "shooter", model.NewPosition(3, -4), 5, 5)
	resp := OKMessage("Done", NewState(r.State()))

	b.ResetTimer()
	for range b.N {
		if err := WriteJSON(io.Discard, resp); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLinePool_GetPut(b *testing.B) {
	b.ReportAllocs()

	p := newLinePool(512)

	b.ResetTimer()
	for range b.N {
		buf := p.Get()
		buf.WriteString(`{"result":"OK"}`)
		p.Put(buf)
	}
}
