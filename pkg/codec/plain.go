package codec

// Plain passes payloads through unchanged.
type Plain struct{}

// NewPlain returns the pass-through codec.
func NewPlain() *Plain {
	return &Plain{}
}

func (*Plain) Name() string {
	return "plain"
}

func (*Plain) Encode(plaintext []byte) ([]byte, error) {
	return plaintext, nil
}

func (*Plain) Decode(data []byte) ([]byte, error) {
	return data, nil
}
