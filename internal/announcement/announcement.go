// Package announcement кодирует и декодирует анонсы участников,
// которые рассылаются в multicast-группу.
package announcement

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaxDatagramSize ограничивает размер принимаемого анонса.
const MaxDatagramSize = 4096

var ErrDecode = errors.New("announcement decode failed")

// Announcement это полезная нагрузка анонса: имя участника и порт его сервиса.
type Announcement struct {
	Name string `json:"name"`
	Port uint16 `json:"port"`
}

// wireAnnouncement различает отсутствующие поля и нулевые значения.
type wireAnnouncement struct {
	Name *string `json:"name"`
	Port *uint16 `json:"port"`
}

func New(name string, port uint16) Announcement {
	return Announcement{Name: name, Port: port}
}

func (a Announcement) Encode() ([]byte, error) {
	if !utf8.ValidString(a.Name) {
		return nil, fmt.Errorf("encode announcement: name is not valid UTF-8")
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode announcement: %w", err)
	}
	if len(b) > MaxDatagramSize {
		return nil, fmt.Errorf("encode announcement: payload of %d bytes exceeds %d", len(b), MaxDatagramSize)
	}
	return b, nil
}

// Decode разбирает анонс. Неизвестные поля игнорируются, отсутствующие
// или некорректные обязательные поля приводят к ErrDecode.
func Decode(b []byte) (Announcement, error) {
	if !utf8.Valid(b) {
		return Announcement{}, fmt.Errorf("%w: payload is not valid UTF-8", ErrDecode)
	}

	var w wireAnnouncement
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&w); err != nil {
		return Announcement{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if dec.More() {
		return Announcement{}, fmt.Errorf("%w: trailing data after object", ErrDecode)
	}

	if w.Name == nil {
		return Announcement{}, fmt.Errorf("%w: missing field \"name\"", ErrDecode)
	}
	if w.Port == nil {
		return Announcement{}, fmt.Errorf("%w: missing field \"port\"", ErrDecode)
	}

	return Announcement{Name: *w.Name, Port: *w.Port}, nil
}
