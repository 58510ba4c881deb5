package models

import (
	"encoding/json"
	"fmt"
)

// EncodeDocument serializes a character record into its stored JSON form.
func EncodeDocument(c *Character) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode character %s: %w", c.ID, err)
	}
	return data, nil
}

// DecodeDocument restores a character record from its stored JSON form and
// applies defaults so collection fields are always usable.
func DecodeDocument(data []byte) (*Character, error) {
	var c Character
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode character document: %w", err)
	}
	c.EnsureDefaults()
	return &c, nil
}
