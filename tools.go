//go:build tools

package tools

// Man pages are generated by cmd/gendoc, which is excluded from normal builds.
import (
	_ "github.com/spf13/cobra/doc"
)
