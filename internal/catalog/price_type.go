package catalog

import (
	"encoding/json"
	"fmt"
)

type PriceType string

const (
	PriceTypeRecurring PriceType = "recurring"
	PriceTypeOneTime   PriceType = "one-time"
	PriceTypeUsage     PriceType = "usage"
)

// PriceTypes lists every billing classification in declaration order.
var PriceTypes = []PriceType{PriceTypeRecurring, PriceTypeOneTime, PriceTypeUsage}

func ParsePriceType(s string) (PriceType, error) {
	for _, t := range PriceTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPriceType, s)
}

func (t PriceType) String() string { return string(t) }

func (t PriceType) Valid() bool {
	_, err := ParsePriceType(string(t))
	return err == nil
}

func (t PriceType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPriceType, string(t))
	}
	return json.Marshal(string(t))
}

func (t *PriceType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePriceType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
