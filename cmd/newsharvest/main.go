package main

import "newsharvest/cmd"

func main() {
	cmd.Execute()
}
