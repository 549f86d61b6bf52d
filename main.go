package main

import "github.com/gaurav-prasanna/reportpipe/cmd"

func main() {
	cmd.Execute()
}
