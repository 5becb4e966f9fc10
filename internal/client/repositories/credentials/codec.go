package credentials

import "github.com/dmitrijs2005/bakerykit/internal/cryptox"

type codec interface {
	encode(plain string) ([]byte, error)
	decode(raw []byte) (string, error)
}

type plainCodec struct{}

func (plainCodec) encode(plain string) ([]byte, error) { return []byte(plain), nil }
func (plainCodec) decode(raw []byte) (string, error)   { return string(raw), nil }

type sealCodec struct {
	key []byte
}

func (c sealCodec) encode(plain string) ([]byte, error) {
	return cryptox.Seal([]byte(plain), c.key)
}

func (c sealCodec) decode(raw []byte) (string, error) {
	plain, err := cryptox.Open(raw, c.key)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
