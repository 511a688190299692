// Package fonts provides the embedded fonts used for label rasterization.
//
// Both faces come from the Go font family shipped with golang.org/x/image, so
// the binary needs no system fonts. Parsed fonts are cached after first use.
package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Font family names accepted by [ByName].
const (
	Regular = "regular"
	Mono    = "mono"
)

var (
	regularOnce sync.Once
	regularFont *opentype.Font
	regularErr  error

	monoOnce sync.Once
	monoFont *opentype.Font
	monoErr  error
)

// GoRegular returns the parsed Go Regular font.
func GoRegular() (*opentype.Font, error) {
	regularOnce.Do(func() {
		regularFont, regularErr = opentype.Parse(goregular.TTF)
	})
	return regularFont, regularErr
}

// GoMono returns the parsed Go Mono font.
func GoMono() (*opentype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = opentype.Parse(gomono.TTF)
	})
	return monoFont, monoErr
}

// ByName returns an embedded font by family name.
func ByName(name string) (*opentype.Font, error) {
	switch name {
	case Regular, "":
		return GoRegular()
	case Mono:
		return GoMono()
	}
	return nil, fmt.Errorf("unknown font %q", name)
}
