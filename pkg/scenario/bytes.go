package scenario

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"gopkg.in/yaml.v3"
)

// Bytes is a byte string written in fixtures as "hex:0a0b", "b58:..." or
// "str:text". An empty string decodes to no bytes.
type Bytes []byte

func ParseBytes(s string) (Bytes, error) {
	prefix, body, ok := strings.Cut(s, ":")
	if !ok {
		if s == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("byte string %q lacks a hex:, b58: or str: prefix", s)
	}
	switch prefix {
	case "hex":
		b, err := hex.DecodeString(strings.ReplaceAll(body, " ", ""))
		if err != nil {
			return nil, fmt.Errorf("bad hex in %q: %w", s, err)
		}
		return b, nil
	case "b58":
		b, err := base58.Decode(body)
		if err != nil {
			return nil, fmt.Errorf("bad base58 in %q: %w", s, err)
		}
		return b, nil
	case "str":
		return Bytes(body), nil
	}
	return nil, fmt.Errorf("unknown byte string prefix %q", prefix)
}

func (b *Bytes) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseBytes(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*b = parsed
	return nil
}

func (b Bytes) MarshalYAML() (interface{}, error) {
	return "hex:" + hex.EncodeToString(b), nil
}
