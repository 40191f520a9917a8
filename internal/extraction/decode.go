package extraction

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"claimflow/internal/domain"
)

// decodeInto fills a typed record from merged fields, matching json tag names.
func decodeInto(fields Fields, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(fields)); err != nil {
		return &domain.ParseError{Err: fmt.Errorf("decoding fields: %w", err)}
	}
	return nil
}
