package main

import "github.com/huanfeng/androidgen-cli/cmd"

func main() {
	cmd.Execute()
}
