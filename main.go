package main

import "github.com/KaramelBytes/tabimport/cmd"

func main() {
	cmd.Execute()
}
