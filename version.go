package guidepost

import _ "embed"

// Version is the release of the guidepost module.
//
//go:embed VERSION
var Version string
