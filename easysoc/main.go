// Package main is the entry of the easysoc command.
package main

import "github.com/sarchlab/easysoc/easysoc/cmd"

func main() {
	cmd.Execute()
}
