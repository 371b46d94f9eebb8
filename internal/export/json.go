package export

import (
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/roadmap/internal/domain"
)

// JSON renders the roadmap as an indented array in date order, the same
// shape an uploaded roadmap file is read in.
func JSON(r domain.Roadmap) ([]byte, error) {
	data, err := json.MarshalIndent(r.Sorted(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding roadmap: %w", err)
	}
	return data, nil
}
