package service

import (
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
)

// jsonCodec wraps the standard JSON-RPC 2.0 codec so that method names
// published in the operator interface ("riskguard.authorize") resolve
// to the exported Go methods ("riskguard.Authorize").
type jsonCodec struct {
	underlying *json2.Codec
}

func newJSONCodec() *jsonCodec {
	return &jsonCodec{underlying: json2.NewCodec()}
}

func (c *jsonCodec) NewRequest(r *http.Request) rpc.CodecRequest {
	return codecRequest{c.underlying.NewRequest(r)}
}

type codecRequest struct {
	rpc.CodecRequest
}

// Method uppercases the first letter of the method component so the
// wire form stays lowercase while gorilla dispatches on the exported
// name.
func (cr codecRequest) Method() (string, error) {
	method, err := cr.CodecRequest.Method()
	if err != nil {
		return "", err
	}

	dot := strings.LastIndex(method, ".")
	if dot == -1 || dot == len(method)-1 {
		return method, nil
	}

	first, size := utf8.DecodeRuneInString(method[dot+1:])

	return method[:dot+1] + string(unicode.ToUpper(first)) + method[dot+1+size:], nil
}
