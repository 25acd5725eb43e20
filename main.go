package main

import "github.com/mxrlkn/murmur/cmd"

func main() {
	cmd.Execute()
}
