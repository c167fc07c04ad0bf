// Package main provides the entry point for the bookcafe-search CLI.
package main

import (
	"os"

	"github.com/tejaspanchall/BookCafe-Backend/cmd/bookcafe-search/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
