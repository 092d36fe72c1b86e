// Package static holds the stylesheet, script and icons served under /static.
package static

import "embed"

//go:embed site.css app.js icons/*.svg
var FS embed.FS
