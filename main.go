package main

import "github.com/AndrewDeWitt/GrimLog-sub001/cmd"

func main() {
	cmd.Execute()
}
