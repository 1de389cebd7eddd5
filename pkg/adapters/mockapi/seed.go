package mockapi

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/roster/pkg/domain"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// SeedFile represents the structure of a seed file: either a bare list of
// users or a document with a "data" key, the way json-server databases look.
type SeedFile struct {
	Data []domain.User `yaml:"data" json:"data"`
}

// LoadSeed reads users from a YAML or JSON file, chosen by extension.
func LoadSeed(path string) ([]domain.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data, strings.ToLower(filepath.Ext(path)) == ".json")
}

// ParseSeed decodes seed content. isJSON selects the JSON decoder, YAML otherwise.
func ParseSeed(data []byte, isJSON bool) ([]domain.User, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return []domain.User{}, nil
	}

	var users []domain.User
	if isJSON {
		if strings.HasPrefix(trimmed, "[") {
			if err := json.Unmarshal(data, &users); err != nil {
				return nil, fmt.Errorf("failed to parse seed json: %w", err)
			}
		} else {
			var doc SeedFile
			if err := json.Unmarshal(data, &doc); err != nil {
				return nil, fmt.Errorf("failed to parse seed json: %w", err)
			}
			users = doc.Data
		}
	} else {
		// Default to YAML
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			if err := node.Decode(&users); err != nil {
				return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
			}
		} else {
			var doc SeedFile
			if err := node.Decode(&doc); err != nil {
				return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
			}
			users = doc.Data
		}
	}

	seen := make(map[int]bool, len(users))
	for _, u := range users {
		if u.ID <= 0 {
			return nil, fmt.Errorf("seed user %q has no positive id", u.Name)
		}
		if seen[u.ID] {
			return nil, fmt.Errorf("duplicate seed user id %d", u.ID)
		}
		seen[u.ID] = true
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// DefaultSeed is the collection served when no seed file is given.
func DefaultSeed() []domain.User {
	return []domain.User{
		{ID: 1, Name: "Leanne Graham", Username: "Bret", Email: "Sincere@april.biz", Address: &domain.Address{City: "Gwenborough"}},
		{ID: 2, Name: "Ervin Howell", Username: "Antonette", Email: "Shanna@melissa.tv", Address: &domain.Address{City: "Wisokyburgh"}},
		{ID: 3, Name: "Clementine Bauch", Username: "Samantha", Email: "Nathan@yesenia.net", Address: &domain.Address{City: "McKenziehaven"}},
		{ID: 4, Name: "Patricia Lebsack", Username: "Karianne", Email: "Julianne.OConner@kory.org", Address: &domain.Address{City: "South Elvis"}},
		{ID: 5, Name: "Chelsey Dietrich", Username: "Kamren", Email: "Lucio_Hettinger@annie.ca", Address: &domain.Address{City: "Roscoeview"}},
	}
}
