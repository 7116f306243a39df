// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package doc embeds the OpenAPI description of the node API.
package doc

import (
	"embed"
	"sync"

	"gopkg.in/yaml.v3"
)

// SpecFile is the name of the embedded OpenAPI document.
const SpecFile = "pledge.yaml"

// FS serves the OpenAPI document.
//
//go:embed pledge.yaml
var FS embed.FS

// Version returns info.version of the OpenAPI document, reported in the x-pledge-ver header.
var Version = sync.OnceValue(func() string {
	content, err := FS.ReadFile(SpecFile)
	if err != nil {
		panic(err)
	}
	var doc struct {
		Info struct {
			Version string `yaml:"version"`
		} `yaml:"info"`
	}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		panic(err)
	}
	return doc.Info.Version
})
