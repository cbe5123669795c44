package main

import "manhwaverse/cmd"

func main() {
	cmd.Execute()
}
