package tree

import (
	"bytes"
	"encoding/gob"
)

func gobEncode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, errorf("gobEncode", "%w", err)
	}
	return buf.Bytes(), nil
}

func gobDecode(payload []byte, v interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(v); err != nil {
		return errorf("gobDecode", "%w", err)
	}
	return nil
}
