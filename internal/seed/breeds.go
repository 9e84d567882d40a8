package seed

import (
	"context"
	_ "embed"
	"fmt"

	"dogpark/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed breeds.yaml
var breedsYAML []byte

// Breed is an entry of the built-in breed catalogue.
type Breed struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	Group string `yaml:"group"`
}

// LoadBreeds parses the embedded breed catalogue.
func LoadBreeds() ([]Breed, error) {
	var doc struct {
		Breeds []Breed `yaml:"breeds"`
	}
	if err := yaml.Unmarshal(breedsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse breeds: %w", err)
	}
	for _, b := range doc.Breeds {
		if b.Name == "" || len(b.Name) > 20 {
			return nil, fmt.Errorf("invalid breed tag %q", b.Name)
		}
	}
	return doc.Breeds, nil
}

// BreedTags creates a tag per catalogue breed. Existing tags keep their usage
// counts, so it is safe to run on every deploy.
func BreedTags(ctx context.Context, db *gorm.DB) error {
	breeds, err := LoadBreeds()
	if err != nil {
		return err
	}
	tags := make([]models.Tag, 0, len(breeds))
	for _, b := range breeds {
		tags = append(tags, models.Tag{Name: b.Name})
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&tags).Error
}
