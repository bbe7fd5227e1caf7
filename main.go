// Prodscout collects demand and competition signals for product keywords
// and writes CSV research reports.
package main

import "github.com/prodscout/prodscout/cmd"

func main() {
	cmd.Execute()
}
