package main

import "github.com/pocketsh/pocketsh/cmd"

func main() {
	cmd.Execute()
}
