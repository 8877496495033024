package main

import "reservation-monitor/cmd"

func main() {
	cmd.Execute()
}
