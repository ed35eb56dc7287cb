package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// readPackagesFile loads a target package list from a JSON or YAML file.
// Both formats accept either a top-level list or a "packages" key holding
// one.
func readPackagesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("packages file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAMLPackages(path, data)
	default:
		return parseJSONPackages(path, data)
	}
}

func parseJSONPackages(path string, data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("packages file %s: invalid JSON", path)
	}
	root := gjson.ParseBytes(data)
	list := root.Get("packages")
	if !list.Exists() && root.IsArray() {
		list = root
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("packages file %s: expected a packages list", path)
	}
	var pkgs []string
	for _, item := range list.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			pkgs = append(pkgs, s)
		}
	}
	return pkgs, nil
}

func parseYAMLPackages(path string, data []byte) ([]string, error) {
	var doc struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &doc); err == nil && doc.Packages != nil {
		return trimPackages(doc.Packages), nil
	}
	var bare []string
	if err := yaml.Unmarshal(data, &bare); err == nil && bare != nil {
		return trimPackages(bare), nil
	}
	return nil, fmt.Errorf("packages file %s: expected a packages list", path)
}

func trimPackages(values []string) []string {
	var pkgs []string
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			pkgs = append(pkgs, s)
		}
	}
	return pkgs
}
