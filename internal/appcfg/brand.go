package appcfg

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// StaticPrefix is the URL prefix the branding assets are served under.
const StaticPrefix = "/pasreporter_static"

// BrandFileName is the optional branding override file under the home dir.
const BrandFileName = "brand.yaml"

// Brand carries the identity values embedded in the generated config.
type Brand struct {
	AppName string `yaml:"app_name"`
	AppIcon string `yaml:"app_icon"`
	Favicon string `yaml:"favicon"`
}

// DefaultBrand returns the stock identity.
func DefaultBrand() Brand {
	return Brand{
		AppName: "PASreporter",
		AppIcon: StaticPrefix + "/logo-horiz.png",
		Favicon: StaticPrefix + "/favicon.png",
	}
}

// LoadBrand reads brand.yaml from homeDir when present and merges it over
// the defaults. Absent fields keep their default values.
func LoadBrand(homeDir string) (Brand, error) {
	brand := DefaultBrand()
	raw, err := os.ReadFile(filepath.Join(homeDir, BrandFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return brand, nil
		}
		return brand, fmt.Errorf("reading %s: %w", BrandFileName, err)
	}

	var overrides Brand
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return brand, fmt.Errorf("parsing %s: %w", BrandFileName, err)
	}
	if overrides.AppName != "" {
		brand.AppName = overrides.AppName
	}
	if overrides.AppIcon != "" {
		brand.AppIcon = overrides.AppIcon
	}
	if overrides.Favicon != "" {
		brand.Favicon = overrides.Favicon
	}
	return brand, nil
}
