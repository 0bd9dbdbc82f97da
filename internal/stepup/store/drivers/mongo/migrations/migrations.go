// Package migrations embeds the index migrations so they ship inside the
// binary.
package migrations

import "embed"

//go:embed *.json
var Migrations embed.FS
