package main

import "github.com/pandemic-tracking/bicheck/cmd"

func main() {
	cmd.Execute()
}
