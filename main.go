package main

import "github.com/GauravRatnawat/claudetop/cmd"

func main() {
	cmd.Execute()
}
