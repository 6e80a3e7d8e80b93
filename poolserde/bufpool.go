package poolserde

import (
	"bytes"
	"encoding/json"
	"sync"
)

// bufferPool provides reusable byte buffers for JSON encoding, avoiding a
// fresh allocation per Interned.MarshalJSON call.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// decoderPool provides reusable JSON decoders.
var decoderPool = sync.Pool{
	New: func() interface{} {
		return json.NewDecoder(nil)
	},
}

// encoderPool provides reusable JSON encoders.
var encoderPool = sync.Pool{
	New: func() interface{} {
		return json.NewEncoder(nil)
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 1024*1024 {
		return
	}
	bufferPool.Put(buf)
}

func getDecoder(r *bytes.Reader) *json.Decoder {
	dec := decoderPool.Get().(*json.Decoder)
	*dec = *json.NewDecoder(r)
	return dec
}

func putDecoder(dec *json.Decoder) {
	decoderPool.Put(dec)
}

func getEncoder(buf *bytes.Buffer) *json.Encoder {
	enc := encoderPool.Get().(*json.Encoder)
	*enc = *json.NewEncoder(buf)
	return enc
}

func putEncoder(enc *json.Encoder) {
	encoderPool.Put(enc)
}
