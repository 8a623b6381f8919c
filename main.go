package main

import "github.com/samsaffron/quicker-llm/cmd"

func main() {
	cmd.Execute()
}
