package main

import (
	"go.uber.org/fx"

	"github.com/Aztech-1729/sliptads/internal/app"
)

func main() {
	fx.New(app.CreateApp()).Run()
}
