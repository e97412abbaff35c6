//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Catalog rebuilds the SQLite snapshot of the reference tables from the
// configured sources.
func Catalog() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "catalog", "import")
}
