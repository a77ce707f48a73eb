package artifacts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// DefaultHybridWeight is used for a hybrid weight that is absent or not a
// number.
const DefaultHybridWeight = 0.5

//go:embed mappings.schema.json
var mappingsSchema []byte

// Mappings is the decoded mappings.json document.
type Mappings struct {
	User2Idx map[string]int
	Item2Idx map[string]int
	WCF      float64
	WContent float64
}

type rawMappings struct {
	User2Idx map[string]int  `json:"user2idx"`
	Item2Idx map[string]int  `json:"item2idx"`
	WCF      json.RawMessage `json:"hybrid_w_cf"`
	WContent json.RawMessage `json:"hybrid_w_content"`
}

// LoadMappings reads and validates mappings.json.
func LoadMappings(path string) (*Mappings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mappings %s: %w", path, err)
	}
	return ParseMappings(data)
}

// ParseMappings validates data against the mappings schema and decodes it.
func ParseMappings(data []byte) (*Mappings, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(mappingsSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to load mappings schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMappings, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidMappings, strings.Join(details, "; "))
	}

	var raw rawMappings
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMappings, err)
	}

	return &Mappings{
		User2Idx: raw.User2Idx,
		Item2Idx: raw.Item2Idx,
		WCF:      weightOrDefault(raw.WCF),
		WContent: weightOrDefault(raw.WContent),
	}, nil
}

func weightOrDefault(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return DefaultHybridWeight
	}
	var w float64
	if err := json.Unmarshal(raw, &w); err != nil {
		return DefaultHybridWeight
	}
	return w
}
