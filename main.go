package main

import "realms-cli/cmd"

func main() {
	cmd.Execute()
}
