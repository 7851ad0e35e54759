package main

import "github.com/papapumpkin/mnoda/cmd"

func main() {
	cmd.Execute()
}
