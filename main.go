// Package main is the entry point for pawgrate, a friendly ogr2ogr wrapper
// for importing geospatial files into PostGIS.
package main

import (
	"pawgrate/cli/cmd"
)

func main() {
	cmd.Execute()
}
