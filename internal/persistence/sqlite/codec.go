package sqlite

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Detail blobs use Core Deterministic Encoding so the same detail map
// always produces identical bytes.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("sqlite: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		IntDec:         cbor.IntDecConvertSigned,
	}.DecMode()
	if err != nil {
		panic("sqlite: CBOR decoder initialization failed: " + err.Error())
	}
}

func encodeDetail(detail map[string]any) ([]byte, error) {
	if len(detail) == 0 {
		return nil, nil
	}
	return encMode.Marshal(detail)
}

func decodeDetail(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var detail map[string]any
	if err := decMode.Unmarshal(data, &detail); err != nil {
		return nil, err
	}
	return detail, nil
}
