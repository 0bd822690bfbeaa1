package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/foodcart/pkg/models"
)

// SchemaVersion tags every encoded snapshot. Snapshots carrying any other version
// are discarded on decode.
const SchemaVersion = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrMalformedSnapshot  = errors.New("malformed snapshot")
)

type snapshot struct {
	Version int               `json:"version"`
	State   *models.CartState `json:"state"`
}

func Encode(state models.CartState) ([]byte, error) {
	return json.Marshal(snapshot{Version: SchemaVersion, State: &state})
}

// Decode parses a snapshot written by Encode. On any failure it returns an empty
// cart together with the reason, so callers can log it and carry on.
func Decode(data []byte) (models.CartState, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.NewCartState(), fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if snap.Version != SchemaVersion {
		return models.NewCartState(), fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}
	if snap.State == nil {
		return models.NewCartState(), fmt.Errorf("%w: missing state", ErrMalformedSnapshot)
	}
	return sanitize(*snap.State), nil
}
