package main

import "github.com/saasforge/authcore/app"

func main() {
	app.New(nil).Run()
}
