package catalog

// Package catalog provides the storefront product catalog loaded from YAML.

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type StoreConfig struct {
	Store    StoreInfo       `yaml:"store"`
	Products []ProductConfig `yaml:"products"`
}

type StoreInfo struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

type ProductConfig struct {
	SKU         string   `yaml:"sku"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Price       string   `yaml:"price"`
	Active      bool     `yaml:"active"`
	Sizes       []string `yaml:"sizes"`
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(content []byte) (*StoreConfig, error) {
	var config StoreConfig
	if err := yaml.Unmarshal(content, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &config, nil
}

func (p *Parser) ParseFromString(content string) (*StoreConfig, error) {
	return p.Parse([]byte(content))
}
