package main

import "github.com/burnlist/burnlist/cmd"

func main() {
	cmd.Execute()
}
