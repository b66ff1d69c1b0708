// Command stocklens is a terminal client for natural-language inventory
// queries.
package main

import "github.com/berth-dev/stocklens/internal/cli"

func main() {
	cli.Execute()
}
