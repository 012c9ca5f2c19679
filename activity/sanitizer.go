package activity

import (
	"sync"

	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-tableviews/pkg/types"
)

var defaultMaskerOnce sync.Once

// DefaultMasker returns the shared masker with credential-like fields
// registered. Activity payloads may carry caller metadata from transports.
func DefaultMasker() *masker.Masker {
	defaultMaskerOnce.Do(func() {
		if masker.Default == nil {
			return
		}
		registerDefaultMaskFields(masker.Default)
	})
	return masker.Default
}

// SanitizeRecord masks sensitive values in the activity record data payload.
// When masking fails the payload is dropped rather than stored in clear.
func SanitizeRecord(mask *masker.Masker, record types.ActivityRecord) types.ActivityRecord {
	if len(record.Data) == 0 {
		return record
	}
	if mask == nil {
		mask = DefaultMasker()
	}
	if mask == nil {
		record.Data = map[string]any{}
		return record
	}

	masked, err := mask.Mask(cloneMap(record.Data))
	if err != nil {
		record.Data = map[string]any{}
		return record
	}
	if data, ok := masked.(map[string]any); ok {
		record.Data = data
	} else {
		record.Data = map[string]any{}
	}
	return record
}

func registerDefaultMaskFields(mask *masker.Masker) {
	if mask == nil {
		return
	}
	for _, field := range []string{"token", "Token", "secret", "Secret", "password", "Password"} {
		mask.RegisterMaskField(field, "filled4")
	}
}
