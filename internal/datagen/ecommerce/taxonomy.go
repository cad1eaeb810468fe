//-------------------------------------------------------------------------
//
// ecomgen - E-commerce Analytics Data Generator
//
// Copyright (c) 2025 - 2026, CommerceData Labs
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package ecommerce

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// WeightedValue is one entry of a categorical distribution.
type WeightedValue struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// Category describes one product category of the taxonomy: its allowed
// subcategories, price range, popularity weight, and the base names used
// to synthesize product names.
type Category struct {
	Name          string   `yaml:"name"`
	Subcategories []string `yaml:"subcategories"`
	PriceMin      float64  `yaml:"price_min"`
	PriceMax      float64  `yaml:"price_max"`
	Popularity    float64  `yaml:"popularity"`
	BaseNames     []string `yaml:"base_names"`
}

// Weights holds every categorical distribution the generator draws from.
// The defaults are fixed constants; a YAML file can override them.
type Weights struct {
	Countries  []WeightedValue `yaml:"countries"`
	Channels   []WeightedValue `yaml:"channels"`
	Categories []Category      `yaml:"categories"`
}

// DefaultWeights returns the built-in weight tables.
func DefaultWeights() *Weights {
	return &Weights{
		Countries: []WeightedValue{
			{Name: "USA", Weight: 0.40},
			{Name: "UK", Weight: 0.15},
			{Name: "Canada", Weight: 0.10},
			{Name: "Australia", Weight: 0.08},
			{Name: "Germany", Weight: 0.07},
			{Name: "France", Weight: 0.06},
			{Name: "Japan", Weight: 0.05},
			{Name: "Brazil", Weight: 0.09},
		},
		Channels: []WeightedValue{
			{Name: "organic", Weight: 0.30},
			{Name: "google_ads", Weight: 0.25},
			{Name: "facebook", Weight: 0.20},
			{Name: "instagram", Weight: 0.10},
			{Name: "email", Weight: 0.10},
			{Name: "referral", Weight: 0.05},
		},
		Categories: []Category{
			{
				Name:          "Electronics",
				Subcategories: []string{"Smartphones", "Laptops", "Headphones", "Tablets", "Cameras"},
				PriceMin:      100,
				PriceMax:      2000,
				Popularity:    0.35,
				BaseNames:     []string{"Phone", "Laptop", "Earbuds", "Tablet", "Camera", "Monitor", "Speaker", "Console"},
			},
			{
				Name:          "Fashion",
				Subcategories: []string{"Men's Clothing", "Women's Clothing", "Shoes", "Accessories"},
				PriceMin:      20,
				PriceMax:      500,
				Popularity:    0.25,
				BaseNames:     []string{"T-Shirt", "Jeans", "Dress", "Sneakers", "Jacket", "Handbag", "Watch"},
			},
			{
				Name:          "Home & Garden",
				Subcategories: []string{"Furniture", "Kitchen", "Decor", "Lighting"},
				PriceMin:      30,
				PriceMax:      1500,
				Popularity:    0.20,
				BaseNames:     []string{"Sofa", "Chair", "Lamp", "Table", "Cookware", "Bedding", "Vase"},
			},
			{
				Name:          "Books",
				Subcategories: []string{"Fiction", "Non-Fiction", "Children's", "Educational"},
				PriceMin:      5,
				PriceMax:      100,
				Popularity:    0.10,
				BaseNames:     []string{"Novel", "Guide", "Biography", "Textbook", "Cookbook", "Comic"},
			},
			{
				Name:          "Sports",
				Subcategories: []string{"Outdoor", "Fitness", "Team Sports", "Camping"},
				PriceMin:      15,
				PriceMax:      800,
				Popularity:    0.10,
				BaseNames:     []string{"Dumbbell", "Tent", "Basketball", "Yoga Mat", "Bicycle", "Helmet"},
			},
		},
	}
}

// LoadWeights reads weight tables from a YAML file and validates them.
func LoadWeights(path string) (*Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}

	var w Weights
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse weights file: %w", err)
	}

	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights file %s: %w", path, err)
	}

	return &w, nil
}

// Validate checks that every distribution is usable: non-empty, positive
// weights, sane price ranges, and category popularity summing to 1.0.
func (w *Weights) Validate() error {
	if err := validateWeightedValues("countries", w.Countries); err != nil {
		return err
	}
	if err := validateWeightedValues("channels", w.Channels); err != nil {
		return err
	}

	if len(w.Categories) == 0 {
		return fmt.Errorf("categories must not be empty")
	}
	var popularity float64
	for _, c := range w.Categories {
		if c.Name == "" {
			return fmt.Errorf("category name must not be empty")
		}
		if len(c.Subcategories) == 0 {
			return fmt.Errorf("category %s has no subcategories", c.Name)
		}
		if c.PriceMin <= 0 || c.PriceMax <= c.PriceMin {
			return fmt.Errorf("category %s has invalid price range [%v, %v]",
				c.Name, c.PriceMin, c.PriceMax)
		}
		if c.Popularity <= 0 {
			return fmt.Errorf("category %s has non-positive popularity %v", c.Name, c.Popularity)
		}
		popularity += c.Popularity
	}
	if math.Abs(popularity-1.0) > 0.01 {
		return fmt.Errorf("category popularity must sum to 1.0, got %v", popularity)
	}

	return nil
}

func validateWeightedValues(field string, values []WeightedValue) error {
	if len(values) == 0 {
		return fmt.Errorf("%s must not be empty", field)
	}
	for _, v := range values {
		if v.Name == "" {
			return fmt.Errorf("%s entry with empty name", field)
		}
		if v.Weight <= 0 {
			return fmt.Errorf("%s entry %s has non-positive weight %v", field, v.Name, v.Weight)
		}
	}
	return nil
}

func weightsOf(values []WeightedValue) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.Weight
	}
	return out
}

func popularitiesOf(categories []Category) []float64 {
	out := make([]float64, len(categories))
	for i, c := range categories {
		out[i] = c.Popularity
	}
	return out
}
