package zone

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a JSON array of zones, validating each record. A zone
// that fails validation fails the whole load; the analysis job is the
// only writer, so a bad record means the file itself is suspect.
func LoadFile(path string) ([]Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zones: %w", err)
	}

	var zones []Zone
	if err := json.Unmarshal(data, &zones); err != nil {
		return nil, fmt.Errorf("parse zones: %w", err)
	}

	for _, z := range zones {
		if err := z.Validate(); err != nil {
			return nil, err
		}
	}
	return zones, nil
}
