package config

import (
	"fmt"
	"mime"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// UploadPolicy controls which files the upload coordinator accepts.
type UploadPolicy struct {
	AllowedTypes []string `yaml:"allowed_types"`
	MaxBytes     int64    `yaml:"max_bytes"`
}

// Allows reports whether the declared content type is on the allow-list.
// Parameters such as "; charset=binary" are ignored and matching is case-insensitive.
func (p UploadPolicy) Allows(contentType string) bool {
	mediaType := NormalizeMediaType(contentType)
	if mediaType == "" {
		return false
	}
	for _, allowed := range p.AllowedTypes {
		if NormalizeMediaType(allowed) == mediaType {
			return true
		}
	}
	return false
}

// LoadUploadPolicy reads a YAML policy file and overlays it on base.
// Fields missing from the file keep their base values.
//
// Example file:
//
//	allowed_types:
//	  - application/pdf
//	  - image/png
//	max_bytes: 104857600
func LoadUploadPolicy(path string, base UploadPolicy) (UploadPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read upload policy %s: %w", path, err)
	}

	var fromFile UploadPolicy
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return base, fmt.Errorf("unmarshal upload policy %s: %w", path, err)
	}

	policy := base
	if len(fromFile.AllowedTypes) > 0 {
		policy.AllowedTypes = fromFile.AllowedTypes
	}
	if fromFile.MaxBytes > 0 {
		policy.MaxBytes = fromFile.MaxBytes
	}

	if policy.MaxBytes <= 0 {
		return base, fmt.Errorf("upload policy %s: max_bytes must be positive", path)
	}
	return policy, nil
}

// NormalizeMediaType strips parameters and lower-cases a content type
func NormalizeMediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(contentType)
	}
	return mediaType
}
