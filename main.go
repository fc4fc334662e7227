package main

import "coverfetch/cmd"

func main() {
	cmd.Execute()
}
