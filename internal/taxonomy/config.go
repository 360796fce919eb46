package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type configFile struct {
	Order        []string          `yaml:"order"`
	Labels       map[string]string `yaml:"labels"`
	DefaultGroup string            `yaml:"default_group"`
	StaticLinks  []Link            `yaml:"static_links"`
	Intro        string            `yaml:"intro"`
}

// LoadConfig reads a YAML taxonomy file. Empty path returns DefaultConfig.
// Keys missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultConfig(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("taxonomy: read config %s: %w", path, err)
	}
	return ParseConfig(raw)
}

// ParseConfig decodes YAML taxonomy settings on top of DefaultConfig.
func ParseConfig(raw []byte) (Config, error) {
	var file configFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Config{}, fmt.Errorf("taxonomy: decode config: %w", err)
	}

	cfg := DefaultConfig()
	if order := cleanIDs(file.Order); len(order) > 0 {
		cfg.Order = order
	}
	if len(file.Labels) > 0 {
		labels := make(map[string]string, len(file.Labels))
		for id, label := range file.Labels {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			labels[id] = strings.TrimSpace(label)
		}
		cfg.Labels = labels
	}
	if def := strings.TrimSpace(file.DefaultGroup); def != "" {
		cfg.DefaultGroup = def
	}
	if len(file.StaticLinks) > 0 {
		links := make([]Link, 0, len(file.StaticLinks))
		for _, l := range file.StaticLinks {
			l.Label = strings.TrimSpace(l.Label)
			l.Href = strings.TrimSpace(l.Href)
			if l.Label == "" || l.Href == "" {
				continue
			}
			links = append(links, l)
		}
		if len(links) > 0 {
			cfg.StaticLinks = links
		}
	}
	if intro := strings.TrimSpace(file.Intro); intro != "" {
		cfg.Intro = intro
	}
	return cfg, nil
}

func cleanIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
