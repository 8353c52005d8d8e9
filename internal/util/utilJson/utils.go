package utiljson

import (
	"encoding/json"
	"fmt"
	"io"
)

func ToJson(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return b, nil
}

// WriteLine пишет v одной JSON-строкой с переводом строки.
func WriteLine(w io.Writer, v interface{}) error {
	b, err := ToJson(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
