//go:build tinygo

package main

import (
	"qbit/app"
	"qbit/hal"
	"qbit/qbitos/settings"
)

func main() {
	set, err := settings.NewStore(nil)
	if err != nil {
		return
	}
	rt := app.New(hal.New(), set, nil)
	rt.Run(make(chan struct{}))
}
