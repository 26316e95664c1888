package cache

import "github.com/fxamacker/cbor/v2"

// encMode produces canonical CBOR so equal values encode to equal bytes
var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em
}

// Marshal encodes v as canonical CBOR
func Marshal(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v
func Unmarshal(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}
