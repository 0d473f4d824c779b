// Package id generates the random identifiers used for records created on
// the device, shared documents and HTTP requests.
package id

import (
	"crypto/rand"
	"fmt"
)

// Base62: 0-9, A-Z, a-z. URL-safe and valid in every key the stores use.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	// DefaultLength is the length of locally generated record IDs
	DefaultLength = 12
	// DocumentLength is the length of server-assigned document IDs
	DocumentLength = 20
	// RequestLength is the length of generated request IDs
	RequestLength = 16
)

const (
	PrefixFacility = "sf"
	PrefixVessel   = "vs"
	PrefixRequest  = "req"
)

// maxUnbiased is the largest multiple of len(alphabet) that fits a byte.
// Bytes at or above it are redrawn so every symbol is equally likely.
const maxUnbiased = 256 - 256%len(alphabet)

// Generate returns a cryptographically random Base62 string. A non-positive
// length means DefaultLength.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/2)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// GenerateWithPrefix returns "prefix_" followed by a random string.
func GenerateWithPrefix(prefix string, length int) (string, error) {
	s, err := Generate(length)
	if err != nil {
		return "", err
	}
	return prefix + "_" + s, nil
}

func NewFacilityID() (string, error) {
	return GenerateWithPrefix(PrefixFacility, DefaultLength)
}

func NewVesselID() (string, error) {
	return GenerateWithPrefix(PrefixVessel, DefaultLength)
}

// NewDocumentID generates a server-side document ID. Document IDs carry no
// prefix since the collection path already names the kind.
func NewDocumentID() (string, error) {
	return Generate(DocumentLength)
}

func NewRequestID() (string, error) {
	return GenerateWithPrefix(PrefixRequest, RequestLength)
}
