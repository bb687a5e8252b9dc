// Copyright © 2026 Tilemux contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/profiles.go
// Summary: Content profiles: what command or builtin a new pane hosts.

package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

//go:embed profiles.toml
var defaultProfiles []byte

// profileNamespace seeds stable profile identities so the same profile name
// maps to the same UUID across runs.
var profileNamespace = uuid.MustParse("b6a0e4a2-55c1-4e39-9f0c-1f3f6dbb5a84")

// Profile describes what a new pane runs.
type Profile struct {
	Name       string   `toml:"-"`
	Command    string   `toml:"command"`
	Args       []string `toml:"args"`
	Title      string   `toml:"title"`
	Scrollback int      `toml:"scrollback"`
	Kind       string   `toml:"kind"`
}

// ID returns the profile's stable identity, derived from its name.
func (p Profile) ID() uuid.UUID {
	return uuid.NewSHA1(profileNamespace, []byte(p.Name))
}

type profileFile struct {
	Profiles map[string]Profile `toml:"profiles"`
}

// ProfilesPath returns the location of the user's profiles file.
func ProfilesPath() (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "profiles.toml"), nil
}

// LoadProfiles reads the user's profiles, seeding the file with the embedded
// defaults on first run.
func LoadProfiles() (map[string]Profile, error) {
	path, err := ProfilesPath()
	if err != nil {
		return decodeProfiles(defaultProfiles)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir config dir: %w", err)
		}
		if err := os.WriteFile(path, defaultProfiles, 0o644); err != nil {
			return nil, fmt.Errorf("seed profiles: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	return decodeProfiles(data)
}

func decodeProfiles(data []byte) (map[string]Profile, error) {
	var pf profileFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	for name, p := range pf.Profiles {
		p.Name = name
		if p.Kind == "" {
			p.Kind = "shell"
		}
		if p.Title == "" {
			p.Title = name
		}
		if p.Scrollback <= 0 {
			p.Scrollback = 2000
		}
		pf.Profiles[name] = p
	}
	return pf.Profiles, nil
}

// ProfileNames lists profile names in stable order.
func ProfileNames(profiles map[string]Profile) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
