package recognize

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"fridgevision/llm"
)

var (
	// ErrNoImage means the request carried no image payload at all.
	ErrNoImage = errors.New("image payload is required")
	// ErrBadImage means the payload was present but not valid base64.
	ErrBadImage = errors.New("image payload is not valid base64")
)

// NormalizeImage accepts a base64 payload with or without a
// data:image/<type>;base64, prefix and returns decoded image bytes plus the
// format hint for the model call. Decoding doubles as character validation;
// mime and byte-length checks are deliberately not done here.
func NormalizeImage(payload string) (llm.Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return llm.Image{}, ErrNoImage
	}

	format := "jpeg"
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return llm.Image{}, ErrBadImage
		}
		header := payload[:comma]
		payload = payload[comma+1:]

		if f, ok := strings.CutPrefix(header, "data:image/"); ok {
			if semi := strings.IndexByte(f, ';'); semi > 0 {
				format = f[:semi]
			}
		}
	}
	if format == "jpg" {
		format = "jpeg"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return llm.Image{}, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	if len(data) == 0 {
		return llm.Image{}, ErrNoImage
	}

	return llm.Image{Data: data, Format: format}, nil
}
