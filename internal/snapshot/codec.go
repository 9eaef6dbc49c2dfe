package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/almahra/storefront/internal/cart"
)

// encode writes the guest snapshot layout: items, total, itemCount, isOpen.
func encode(state cart.State) ([]byte, error) {
	if state.Items == nil {
		state.Items = []cart.LineItem{}
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return payload, nil
}

func decode(payload []byte) (*cart.State, error) {
	var state cart.State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return &state, nil
}
