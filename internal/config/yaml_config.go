package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Page content that is awkward to carry in env vars lives here.
type YAMLConfig struct {
	About AboutConfig `yaml:"about"`
}

// AboutConfig is the content of the /about page.
type AboutConfig struct {
	Heading  string         `yaml:"heading"`
	Body     string         `yaml:"body"`
	ImageURL string         `yaml:"image_url"`
	Team     []MemberConfig `yaml:"team,omitempty"`
}

// MemberConfig is one person listed on the about page.
type MemberConfig struct {
	Name string `yaml:"name"`
	Role string `yaml:"role,omitempty"`
	URL  string `yaml:"url,omitempty"`
}

// defaultAbout mirrors what the page showed before it was configurable.
var defaultAbout = AboutConfig{
	Heading:  "About us",
	Body:     "A collection of deliberately terrible user interfaces. Submit your own, comment on others.",
	ImageURL: "https://static-maps.yandex.ru/1.x/?ll=-52.836568,47.1912634&spn=0.0009,0.0007&l=map",
}

// LoadYAMLConfig loads the YAML configuration file at path.
// A missing file is not an error: defaults are returned instead.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	cfg := &YAMLConfig{About: defaultAbout}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.About.Heading == "" {
		cfg.About.Heading = defaultAbout.Heading
	}
	if cfg.About.ImageURL == "" {
		cfg.About.ImageURL = defaultAbout.ImageURL
	}

	return cfg, nil
}
