package main

import "slotly/cmd"

func main() {
	cmd.Execute()
}
