package main

import (
	"time"

	"github.com/urfave/cli"
)

var (
	flgDevice      = cli.IntFlag{Name: "device, i", Value: -1, Usage: "HCI device index, -1 for the first available"}
	flgTimeout     = cli.DurationFlag{Name: "timeout, t", Value: time.Second, Usage: "Timeout for each request"}
	flgDebug       = cli.BoolFlag{Name: "debug", Usage: "Log every packet"}
	flgMetricsAddr = cli.StringFlag{Name: "metrics-addr", Usage: "Serve Prometheus metrics on this address"}

	flgDuration = cli.DurationFlag{Name: "duration, d", Value: time.Second * 5, Usage: "How long to listen, 0 until interrupted"}
	flgAddr     = cli.StringFlag{Name: "addr, a", Usage: "Address of remote device"}
	flgName     = cli.StringFlag{Name: "name, n", Value: "Gopher", Usage: "Advertised name"}
	flgActive   = cli.BoolFlag{Name: "active", Usage: "Send scan requests"}
	flgAllowDup = cli.BoolFlag{Name: "dup", Usage: "Allow duplicate in scanning result"}
	flgEvent    = cli.StringFlag{Name: "event, e", Value: "0x3e", Usage: "Event code to monitor"}
)
