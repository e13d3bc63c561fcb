package main

import "items-planning/cmd"

func main() {
	cmd.Execute()
}
