// Package templates embeds the HTML templates of the guide server.
package templates

import "embed"

//go:embed layouts/*.gohtml partials/*.gohtml pages/*.gohtml
var FS embed.FS
