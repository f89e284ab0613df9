package main

import "github.com/crossforge/buildchain/cmd"

func main() {
	cmd.Execute()
}
