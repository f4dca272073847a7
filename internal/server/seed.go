package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/organico-dev/organico/internal/models"
)

// categorySeed is one entry of the category seed file
type categorySeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

// seedCategories loads product categories from a YAML file into the catalog.
// Existing categories (matched by name) are left untouched, so the file can
// stay in place across restarts.
func (s *Server) seedCategories(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read category seed file: %w", err)
	}

	var seeds []categorySeed
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("failed to parse category seed file: %w", err)
	}

	created := 0
	for _, seed := range seeds {
		if seed.Name == "" {
			continue
		}

		var existing models.Category
		err := s.db.Where("name = ?", seed.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to check category %q: %w", seed.Name, err)
		}

		category := &models.Category{
			Name:        seed.Name,
			Description: seed.Description,
			Icon:        seed.Icon,
		}
		if err := s.db.Create(category).Error; err != nil {
			return fmt.Errorf("failed to seed category %q: %w", seed.Name, err)
		}
		created++
	}

	if created > 0 {
		s.logger.Info().Int("count", created).Str("file", path).Msg("Seeded product categories")
	}

	return nil
}
