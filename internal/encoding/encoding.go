package encoding

import (
	"reflect"

	"github.com/algorand/go-codec/codec"
)

var jsonCodecHandle *codec.JsonHandle

func init() {
	jsonCodecHandle = new(codec.JsonHandle)
	jsonCodecHandle.Canonical = true
	jsonCodecHandle.RecursiveEmptyCheck = true
	jsonCodecHandle.HTMLCharsAsIs = true
	jsonCodecHandle.Indent = 0
	jsonCodecHandle.MapKeyAsString = true
	// Nested documents decode as JSON objects, not map[interface{}]interface{}.
	jsonCodecHandle.MapType = reflect.TypeOf(map[string]interface{}(nil))
}

// EncodeJSON converts an object into canonical JSON (sorted map keys).
func EncodeJSON(obj interface{}) []byte {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, jsonCodecHandle)
	enc.MustEncode(obj)
	return buf
}

// DecodeJSON decodes json into objptr.
func DecodeJSON(b []byte, objptr interface{}) error {
	dec := codec.NewDecoderBytes(b, jsonCodecHandle)
	return dec.Decode(objptr)
}

// DecodeDocument decodes a json object into a generic document.
func DecodeDocument(b []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	err := DecodeJSON(b, &doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
