package web

import (
	_ "embed"
)

//go:embed index.html
var index []byte

// Index returns the landing page served at /
func Index() []byte {
	return index
}
