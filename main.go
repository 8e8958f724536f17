package main

import "github.com/kozaktomas/scan2pdf/cmd"

func main() {
	cmd.Execute()
}
