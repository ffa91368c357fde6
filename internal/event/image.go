package event

import (
	"bytes"
	"encoding/base64"
	"errors"
)

// maxDecodedImageBytes caps the decoded photo at 5 MiB.
const maxDecodedImageBytes = 5 << 20

// minEncodedLen: anything shorter cannot hold even the smallest image
// header once decoded.
const minEncodedLen = 37

var imageSignatures = [][]byte{
	{0xFF, 0xD8, 0xFF},                               // JPEG
	{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, // PNG
	[]byte("GIF87a"),
	[]byte("GIF89a"),
	{0x42, 0x4D},             // BMP
	{0x52, 0x49, 0x46, 0x46}, // RIFF (WebP container)
}

var (
	errPhotoTooShort    = errors.New("encoded data too short")
	errPhotoBadLength   = errors.New("encoded length must be a multiple of 4")
	errPhotoBadAlphabet = errors.New("contains characters outside the base64 alphabet")
	errPhotoTooLarge    = errors.New("decoded image exceeds 5 MiB")
	errPhotoBadDecode   = errors.New("not decodable as base64")
	errPhotoNotAnImage  = errors.New("decoded bytes do not match a known image signature")
)

// validatePhoto enforces the photo gate: plausible base64 shape, a clean
// decode, a known image file signature, and the size cap.
func validatePhoto(encoded string) error {
	if len(encoded) < minEncodedLen {
		return errPhotoTooShort
	}
	if len(encoded)%4 != 0 {
		return errPhotoBadLength
	}
	if !isBase64Alphabet(encoded) {
		return errPhotoBadAlphabet
	}
	if len(encoded) > base64.StdEncoding.EncodedLen(maxDecodedImageBytes) {
		return errPhotoTooLarge
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return errPhotoBadDecode
	}
	if len(decoded) > maxDecodedImageBytes {
		return errPhotoTooLarge
	}

	for _, sig := range imageSignatures {
		if bytes.HasPrefix(decoded, sig) {
			return nil
		}
	}
	return errPhotoNotAnImage
}

// isBase64Alphabet reports whether s consists of standard base64
// characters with '=' allowed only as trailing padding.
func isBase64Alphabet(s string) bool {
	padding := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '+', c == '/':
			if padding > 0 {
				return false
			}
		case c == '=':
			padding++
			if padding > 2 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
