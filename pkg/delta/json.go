package delta

import "encoding/json"

func marshalOps(ops []Op) ([]byte, error) {
	return json.Marshal(ops)
}

func unmarshalOps(data []byte) ([]Op, error) {
	var ops []Op
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}
