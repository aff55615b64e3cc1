package main

import "github.com/samhoang/copm/cmd"

func main() {
	cmd.Execute()
}
