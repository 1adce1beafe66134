// Package main is the entry point for the zmanim application
package main

import (
	"github.com/jcom-dev/zmanim/cmd"
)

func main() {
	cmd.Execute()
}
