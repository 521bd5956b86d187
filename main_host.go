//go:build !tinygo

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"qbit/app"
	"qbit/hal"
	"qbit/qbitos/dash"
	"qbit/qbitos/netlink"
	"qbit/qbitos/settings"
)

func main() {
	envPath := flag.String("env", ".env", "settings file path")
	animDir := flag.String("anim", "animations", "directory holding .qgif files")
	dashAddr := flag.String("dash", "127.0.0.1:8090", "dashboard listen address (empty disables)")
	headless := flag.Bool("headless", false, "run without the display window")
	flag.Parse()

	set, err := settings.NewStore(settings.EnvFile{Path: *envPath})
	if err != nil {
		fmt.Fprintln(os.Stderr, "qbit:", err)
		os.Exit(1)
	}

	h := hal.NewHost(hal.HostConfig{AnimDir: *animDir})
	log := h.Logger()

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		close(stop)
	}()

	rt := app.New(h, set, nil)

	nl := netlink.New(set, h.Link(), log, &rt.Net, &rt.Conn)
	rt.Display.Pub = nl
	go nl.Run(stop)

	if *dashAddr != "" {
		srv := dash.New(rt.Player, rt.Screen, set, &rt.Net, h.Display(), log)
		go func() {
			if err := srv.Serve(*dashAddr); err != nil {
				log.WriteLineString("qbit: dashboard: " + err.Error())
			}
		}()
	}

	if *headless {
		rt.Run(stop)
		return
	}

	go rt.Run(stop)
	if err := hal.RunWindow(h, "qbit"); err != nil {
		fmt.Fprintln(os.Stderr, "qbit:", err)
		os.Exit(1)
	}
}
