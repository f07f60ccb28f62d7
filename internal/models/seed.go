package models

import _ "embed"

// DefaultSeed is the community listing bundled with the binary.
//
//go:embed seed/plots.json
var DefaultSeed []byte
