package main

import (
	"github.com/pageza/cravewise/backend/internal/app"
)

func main() {
	app.New().Run()
}
