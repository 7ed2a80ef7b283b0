package credentials

import (
	"encoding/json"
	"fmt"
	"os"
)

// Pair is a username and password.
type Pair struct {
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
}

// LoadFromFile loads a credential pair from a JSON file of the form:
//
//	{"username": "admin", "password": "s3cret"}
func LoadFromFile(path string) (Pair, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return Pair{}, fmt.Errorf("read credentials file: %w", err)
	}

	var p Pair
	if err := json.Unmarshal(data, &p); err != nil {
		return Pair{}, fmt.Errorf("parse credentials file: %w", err)
	}

	return p, nil
}
