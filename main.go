package main

import "github.com/notargets/ensight6/cmd"

func main() {
	cmd.Execute()
}
