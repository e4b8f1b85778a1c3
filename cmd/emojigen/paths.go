package main

import "github.com/ChanghyeonYoon/slack-emoji-generator/internal/paths"

// DataPaths aliases [paths.DataDir] so command code can take the data
// directory without qualifying the internal package.
type DataPaths = paths.DataDir
