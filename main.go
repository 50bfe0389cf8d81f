package main

import "github.com/twistql/twistql/cmd"

func main() {
	cmd.Execute()
}
