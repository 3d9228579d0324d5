// Package selection decodes the dataset lists hosts post to the viewer.
package selection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingBounds = errors.New("dataset is missing bounds")
	ErrNotObject     = errors.New("dataset is not an object")
)

// Descriptor describes one search result's footprint and display metadata.
type Descriptor struct {
	MinLongitude float64 `json:"minLongitude"`
	MaxLongitude float64 `json:"maxLongitude"`
	MinLatitude  float64 `json:"minLatitude"`
	MaxLatitude  float64 `json:"maxLatitude"`
	Title        string  `json:"title"`
	Authors      string  `json:"authors"`
	DataCenter   string  `json:"dataCenter"`
	Color        string  `json:"color"`
	MetadataLink string  `json:"metadataLink"`
}

// Rejected records a dataset element that could not be decoded.
type Rejected struct {
	Index int
	Err   error
}

// Message is one inbound payload. Selected keeps the order of the accepted
// elements; Rejected lists the ones that were dropped.
type Message struct {
	Source   string
	Selected []Descriptor
	Rejected []Rejected
}

// Empty reports whether there is nothing to render.
func (m Message) Empty() bool { return len(m.Selected) == 0 }

type wireDescriptor struct {
	MinLongitude *float64 `json:"minLongitude"`
	MaxLongitude *float64 `json:"maxLongitude"`
	MinLatitude  *float64 `json:"minLatitude"`
	MaxLatitude  *float64 `json:"maxLatitude"`
	Title        string   `json:"title"`
	Authors      string   `json:"authors"`
	DataCenter   string   `json:"dataCenter"`
	Color        string   `json:"color"`
	MetadataLink string   `json:"metadataLink"`
}

func (w wireDescriptor) descriptor() (Descriptor, error) {
	if w.MinLongitude == nil || w.MaxLongitude == nil || w.MinLatitude == nil || w.MaxLatitude == nil {
		return Descriptor{}, ErrMissingBounds
	}
	return Descriptor{
		MinLongitude: *w.MinLongitude,
		MaxLongitude: *w.MaxLongitude,
		MinLatitude:  *w.MinLatitude,
		MaxLatitude:  *w.MaxLatitude,
		Title:        w.Title,
		Authors:      w.Authors,
		DataCenter:   w.DataCenter,
		Color:        w.Color,
		MetadataLink: w.MetadataLink,
	}, nil
}

// Decode parses a payload of the form {"selected": [...]}. Only a payload
// that is not JSON at all is an error; a missing or non-array "selected"
// yields an empty message, and bad elements are listed in Rejected.
func Decode(data []byte) (Message, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var probe any
		if jerr := json.Unmarshal(data, &probe); jerr != nil {
			return Message{}, fmt.Errorf("decode message: %w", err)
		}
		// valid JSON that is not an object carries no selection
		return Message{}, nil
	}
	return decodeList(raw["selected"]), nil
}

// DecodeList parses a bare JSON array of descriptors.
func DecodeList(data []byte) (Message, error) {
	if !json.Valid(data) {
		return Message{}, errors.New("decode list: invalid json")
	}
	return decodeList(data), nil
}

func decodeList(data json.RawMessage) Message {
	var items []json.RawMessage
	if len(bytes.TrimSpace(data)) == 0 || json.Unmarshal(data, &items) != nil {
		return Message{}
	}
	var msg Message
	for i, item := range items {
		d, err := decodeItem(item)
		if err != nil {
			msg.Rejected = append(msg.Rejected, Rejected{Index: i, Err: err})
			continue
		}
		msg.Selected = append(msg.Selected, d)
	}
	return msg
}

func decodeItem(item json.RawMessage) (Descriptor, error) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Descriptor{}, ErrNotObject
	}
	var w wireDescriptor
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return Descriptor{}, fmt.Errorf("decode dataset: %w", err)
	}
	return w.descriptor()
}

// Encode renders a message back into its wire payload.
func Encode(selected []Descriptor) ([]byte, error) {
	if selected == nil {
		selected = []Descriptor{}
	}
	return json.Marshal(struct {
		Selected []Descriptor `json:"selected"`
	}{selected})
}
