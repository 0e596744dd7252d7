package main

import "github.com/fgrehm/devctr/cmd"

func main() {
	cmd.Execute()
}
