package main

import "github.com/kunleulysses/August9teen-sub020/spiralmemd/cmd"

func main() {
	cmd.Execute()
}
