package main

import (
	"os"

	"pocketchat/internal/app"
)

func main() {
	os.Exit(app.Run())
}
