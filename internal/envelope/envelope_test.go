package envelope

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name            string
		ct, nonce, salt []byte
	}{
		{name: "single bytes", ct: []byte{0x00}, nonce: []byte{0xFF}, salt: []byte{0x7F}},
		{name: "typical sizes", ct: make([]byte, 34), nonce: []byte("0123456789ab"), salt: []byte("0123456789abcdef")},
		{name: "binary", ct: []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01}, nonce: []byte{1, 2, 3}, salt: []byte{9, 8, 7, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(Encode(tt.ct, tt.nonce, tt.salt))
			require.NoError(t, err)

			e, err := Decode(data)
			require.NoError(t, err)

			ct, nonce, salt, err := e.Bytes()
			require.NoError(t, err)
			assert.Equal(t, tt.ct, ct)
			assert.Equal(t, tt.nonce, nonce)
			assert.Equal(t, tt.salt, salt)
		})
	}
}

func TestMarshal_FieldNames(t *testing.T) {
	data, err := Marshal(Encode([]byte("c"), []byte("n"), []byte("s")))
	require.NoError(t, err)

	var m map[string]string
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, map[string]string{"encrypted": "Yw==", "iv": "bg==", "salt": "cw=="}, m)
}

func TestDecode_RejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty input", raw: ""},
		{name: "whitespace", raw: "   "},
		{name: "not json", raw: "{encrypted:"},
		{name: "null", raw: "null"},
		{name: "array", raw: `["a","b","c"]`},
		{name: "number", raw: "42"},
		{name: "string", raw: `"sk-plaintext"`},
		{name: "empty object", raw: "{}"},
		{name: "missing encrypted", raw: `{"iv":"aQ==","salt":"cw=="}`},
		{name: "missing iv", raw: `{"encrypted":"Yw==","salt":"cw=="}`},
		{name: "missing salt", raw: `{"encrypted":"Yw==","iv":"aQ=="}`},
		{name: "empty encrypted", raw: `{"encrypted":"","iv":"aQ==","salt":"cw=="}`},
		{name: "empty iv", raw: `{"encrypted":"Yw==","iv":"","salt":"cw=="}`},
		{name: "empty salt", raw: `{"encrypted":"Yw==","iv":"aQ==","salt":""}`},
		{name: "numeric field", raw: `{"encrypted":1,"iv":"aQ==","salt":"cw=="}`},
		{name: "null field", raw: `{"encrypted":"Yw==","iv":null,"salt":"cw=="}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Envelope
			assert.NotPanics(t, func() {
				var err error
				e, err = Decode([]byte(tt.raw))

				require.Error(t, err)
				assert.ErrorIs(t, err, ErrShape)

				var shapeErr *ShapeError
				require.True(t, errors.As(err, &shapeErr))
				assert.NotEmpty(t, shapeErr.Reason)
			})
			assert.Equal(t, Envelope{}, e)
		})
	}
}

func TestDecode_ToleratesExtraFields(t *testing.T) {
	e, err := DecodeString(`{"encrypted":"Yw==","iv":"aQ==","salt":"cw==","version":2}`)
	require.NoError(t, err)
	assert.Equal(t, Envelope{Encrypted: "Yw==", IV: "aQ==", Salt: "cw=="}, e)
}

func TestBytes_InvalidBase64IsShapeError(t *testing.T) {
	e := Envelope{Encrypted: "Yw==", IV: "not base64!", Salt: "cw=="}

	_, _, _, err := e.Bytes()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShape)
	assert.Contains(t, err.Error(), "iv")
}

func TestBytes_EmptyFieldIsShapeError(t *testing.T) {
	_, _, _, err := Envelope{Encrypted: "Yw==", IV: "aQ=="}.Bytes()
	assert.ErrorIs(t, err, ErrShape)
}

func TestShapeError_Message(t *testing.T) {
	err := &ShapeError{Reason: "missing salt"}
	assert.Equal(t, "invalid envelope shape: missing salt", err.Error())
	assert.Nil(t, err.Unwrap())
}
