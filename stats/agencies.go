package stats

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/apex/log"
)

// defaultAgencyFile is used when no path is configured.
const defaultAgencyFile = "agencies.json"

// agencyEntry is one record of the agency reference file.
type agencyEntry struct {
	Name     string   `json:"name"`
	Services []string `json:"services"`
}

// LoadServiceAgencies reads the service-to-agency reference table from the
// JSON file at filePath. A missing file is not fatal; aggregation then
// resolves every service to "Unknown".
func LoadServiceAgencies(filePath string) map[string]string {
	if filePath == "" {
		filePath = defaultAgencyFile
	}

	table, err := loadServiceAgencies(filePath)
	if err != nil {
		log.Warnf("Agency table unavailable: %v", err)
		return map[string]string{}
	}
	log.Infof("Loaded %d service-agency mappings from %s", len(table), filePath)
	return table
}

func loadServiceAgencies(filePath string) (map[string]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read agency file: %w", err)
	}

	var entries []agencyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse agency file %s: %w", filePath, err)
	}

	table := make(map[string]string)
	for _, e := range entries {
		for _, service := range e.Services {
			table[service] = e.Name
		}
	}
	return table, nil
}
