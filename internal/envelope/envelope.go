// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package envelope encodes the persisted form of one encrypted credential
// and validates stored records before anything tries to decrypt them.
//
// A record looks like
//
//	{"encrypted":"<base64>","iv":"<base64>","salt":"<base64>"}
//
// and is replaced whole on every write.
package envelope

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Envelope is the persisted unit for one secret. All fields are standard
// base64 and non-empty in a valid envelope.
type Envelope struct {
	// Encrypted is the AES-GCM ciphertext including the tag.
	Encrypted string `json:"encrypted"`
	// IV is the nonce used for this encryption only.
	IV string `json:"iv"`
	// Salt is the KDF salt the key was derived with.
	Salt string `json:"salt"`
}

const schemaJSON = `{
	"type": "object",
	"required": ["encrypted", "iv", "salt"],
	"properties": {
		"encrypted": {"type": "string", "minLength": 1},
		"iv":        {"type": "string", "minLength": 1},
		"salt":      {"type": "string", "minLength": 1}
	}
}`

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
})

// Encode text-encodes the three byte fields into an [Envelope].
func Encode(ciphertext, nonce, salt []byte) Envelope {
	return Envelope{
		Encrypted: base64.StdEncoding.EncodeToString(ciphertext),
		IV:        base64.StdEncoding.EncodeToString(nonce),
		Salt:      base64.StdEncoding.EncodeToString(salt),
	}
}

// Marshal returns the JSON record stored for e.
func Marshal(e Envelope) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return data, nil
}

// Decode validates raw against the envelope schema and parses it. Every
// rejection is a *ShapeError: not JSON, not an object (null, arrays,
// numbers, strings), or any of the three fields missing, not a string, or
// empty. Unknown extra fields are tolerated.
func Decode(raw []byte) (Envelope, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return Envelope{}, &ShapeError{Reason: "empty record"}
	}

	schema, err := compiledSchema()
	if err != nil {
		return Envelope{}, fmt.Errorf("compile envelope schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Envelope{}, &ShapeError{Reason: "record is not valid JSON", Err: err}
	}
	if !result.Valid() {
		reasons := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			reasons = append(reasons, re.String())
		}
		return Envelope{}, &ShapeError{Reason: strings.Join(reasons, "; ")}
	}

	var e Envelope
	if err = json.Unmarshal(raw, &e); err != nil {
		return Envelope{}, &ShapeError{Reason: "record does not decode", Err: err}
	}
	return e, nil
}

// DecodeString is Decode for a value read from string-typed storage.
func DecodeString(raw string) (Envelope, error) {
	return Decode([]byte(raw))
}

// Bytes base64-decodes the three fields. A field that is not valid base64
// is reported as a *ShapeError, so callers can treat it like any other
// malformed record before attempting decryption.
func (e Envelope) Bytes() (ciphertext, nonce, salt []byte, err error) {
	if ciphertext, err = decodeField("encrypted", e.Encrypted); err != nil {
		return nil, nil, nil, err
	}
	if nonce, err = decodeField("iv", e.IV); err != nil {
		return nil, nil, nil, err
	}
	if salt, err = decodeField("salt", e.Salt); err != nil {
		return nil, nil, nil, err
	}
	return ciphertext, nonce, salt, nil
}

func decodeField(name, value string) ([]byte, error) {
	if value == "" {
		return nil, &ShapeError{Reason: fmt.Sprintf("%s: field is empty", name)}
	}
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, &ShapeError{Reason: fmt.Sprintf("%s: not valid base64", name), Err: err}
	}
	return b, nil
}
