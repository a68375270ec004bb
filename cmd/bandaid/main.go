// Package main is the bandaid agent entry point.
package main

import (
	"log"

	"github.com/silasdani/bandaid/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
