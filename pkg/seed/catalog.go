// Package seed loads the game catalog (factions, clans, traits, hunting
// targets and grounds) from a YAML or TOML file into the database.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupportedFormat is returned for catalog files that are neither YAML nor TOML
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
	// ErrInvalidCatalog is returned when a catalog fails validation
	ErrInvalidCatalog = errors.New("invalid catalog")
)

// Catalog is the content of a seed file
type Catalog struct {
	Factions  []Faction `yaml:"factions" toml:"factions"`
	Clans     []Clan    `yaml:"clans" toml:"clans"`
	Abilities []Ability `yaml:"abilities" toml:"abilities"`
	Features  []Feature `yaml:"features" toml:"features"`
	Targets   []Target  `yaml:"targets" toml:"targets"`
	Grounds   []Ground  `yaml:"grounds" toml:"grounds"`
}

type Faction struct {
	Name    string `yaml:"name" toml:"name"`
	Icon    string `yaml:"icon" toml:"icon"`
	Content string `yaml:"content" toml:"content"`
	Visible bool   `yaml:"visible" toml:"visible"`
}

// Clan lists the factions it belongs to and the traits its members may take
// by name
type Clan struct {
	Name      string   `yaml:"name" toml:"name"`
	Icon      string   `yaml:"icon" toml:"icon"`
	Content   string   `yaml:"content" toml:"content"`
	Visible   bool     `yaml:"visible" toml:"visible"`
	Factions  []string `yaml:"factions" toml:"factions"`
	Abilities []string `yaml:"abilities" toml:"abilities"`
	Features  []string `yaml:"features" toml:"features"`
}

type Ability struct {
	Name      string `yaml:"name" toml:"name"`
	Icon      string `yaml:"icon" toml:"icon"`
	Content   string `yaml:"content" toml:"content"`
	Expertise bool   `yaml:"expertise" toml:"expertise"`
	Visible   bool   `yaml:"visible" toml:"visible"`
}

type Feature struct {
	Name    string `yaml:"name" toml:"name"`
	Cost    *int   `yaml:"cost" toml:"cost"`
	Content string `yaml:"content" toml:"content"`
	Visible bool   `yaml:"visible" toml:"visible"`
}

// Target is a hunting target with its descriptions keyed by remains
type Target struct {
	Name         string        `yaml:"name" toml:"name"`
	Image        string        `yaml:"image" toml:"image"`
	HuntReq      string        `yaml:"hunt_req" toml:"hunt_req"`
	Descriptions []Description `yaml:"descriptions" toml:"descriptions"`
}

type Description struct {
	Remains int    `yaml:"remains" toml:"remains"`
	Content string `yaml:"content" toml:"content"`
}

// Ground is a hunting ground. Radius is in metres, Delay in seconds.
type Ground struct {
	Name    string   `yaml:"name" toml:"name"`
	Radius  *int     `yaml:"radius" toml:"radius"`
	MinInst *int     `yaml:"min_inst" toml:"min_inst"`
	MaxInst *int     `yaml:"max_inst" toml:"max_inst"`
	Delay   *int     `yaml:"delay" toml:"delay"`
	Lat     *float64 `yaml:"lat" toml:"lat"`
	Lng     *float64 `yaml:"lng" toml:"lng"`
	Content string   `yaml:"content" toml:"content"`
}

// LoadCatalog reads a catalog from a .yaml, .yml or .toml file
func LoadCatalog(path string) (*Catalog, error) {
	catalog := &Catalog{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(catalog); err != nil {
			return nil, fmt.Errorf("failed to parse YAML catalog: %w", err)
		}
	case ".toml":
		md, err := toml.DecodeFile(path, catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML catalog: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("failed to parse TOML catalog: unknown key %q", undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Validate checks that names are present and unique and that clans only
// reference factions and traits of the catalog
func (c *Catalog) Validate() error {
	factions, err := names("faction", len(c.Factions), func(i int) string { return c.Factions[i].Name })
	if err != nil {
		return err
	}
	abilities, err := names("ability", len(c.Abilities), func(i int) string { return c.Abilities[i].Name })
	if err != nil {
		return err
	}
	features, err := names("feature", len(c.Features), func(i int) string { return c.Features[i].Name })
	if err != nil {
		return err
	}
	if _, err := names("clan", len(c.Clans), func(i int) string { return c.Clans[i].Name }); err != nil {
		return err
	}
	if _, err := names("target", len(c.Targets), func(i int) string { return c.Targets[i].Name }); err != nil {
		return err
	}
	if _, err := names("ground", len(c.Grounds), func(i int) string { return c.Grounds[i].Name }); err != nil {
		return err
	}

	for _, clan := range c.Clans {
		if err := references(clan.Name, "faction", clan.Factions, factions); err != nil {
			return err
		}
		if err := references(clan.Name, "ability", clan.Abilities, abilities); err != nil {
			return err
		}
		if err := references(clan.Name, "feature", clan.Features, features); err != nil {
			return err
		}
	}

	for _, target := range c.Targets {
		seen := make(map[int]bool, len(target.Descriptions))
		for _, desc := range target.Descriptions {
			if seen[desc.Remains] {
				return fmt.Errorf("%w: target %q has two descriptions for remains %d", ErrInvalidCatalog, target.Name, desc.Remains)
			}
			seen[desc.Remains] = true
		}
	}

	for _, ground := range c.Grounds {
		if ground.MinInst != nil && ground.MaxInst != nil && *ground.MinInst > *ground.MaxInst {
			return fmt.Errorf("%w: ground %q has min_inst above max_inst", ErrInvalidCatalog, ground.Name)
		}
		if (ground.Lat == nil) != (ground.Lng == nil) {
			return fmt.Errorf("%w: ground %q needs both lat and lng", ErrInvalidCatalog, ground.Name)
		}
	}
	return nil
}

func names(kind string, n int, name func(int) string) (map[string]bool, error) {
	set := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		v := strings.TrimSpace(name(i))
		if v == "" {
			return nil, fmt.Errorf("%w: %s #%d has no name", ErrInvalidCatalog, kind, i+1)
		}
		if set[v] {
			return nil, fmt.Errorf("%w: duplicate %s %q", ErrInvalidCatalog, kind, v)
		}
		set[v] = true
	}
	return set, nil
}

func references(clan, kind string, refs []string, known map[string]bool) error {
	for _, ref := range refs {
		if !known[ref] {
			return fmt.Errorf("%w: clan %q references unknown %s %q", ErrInvalidCatalog, clan, kind, ref)
		}
	}
	return nil
}
