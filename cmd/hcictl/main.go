//go:build linux
// +build linux

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/muxable/hcisocket/pkg/controller"
	"github.com/muxable/hcisocket/pkg/hci"
	"github.com/muxable/hcisocket/pkg/socket"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var (
	sck  *socket.Socket
	ctrl *controller.Controller
)

func main() {
	app := cli.NewApp()

	app.Name = "hcictl"
	app.Usage = "Talk to a Bluetooth controller over a raw HCI socket"
	app.Version = "0.0.1"
	app.Action = cli.ShowAppHelp
	app.Flags = []cli.Flag{flgDevice, flgTimeout, flgDebug, flgMetricsAddr}

	app.Commands = []cli.Command{
		{
			Name:   "reset",
			Usage:  "Reset the controller",
			Action: reset,
		},
		{
			Name:   "addr",
			Usage:  "Print the controller address",
			Action: addr,
		},
		{
			Name:   "name",
			Usage:  "Print the controller name",
			Action: name,
		},
		{
			Name:    "remote-name",
			Aliases: []string{"rn"},
			Usage:   "Page a classic device for its name",
			Action:  remoteName,
			Flags:   []cli.Flag{flgAddr},
		},
		{
			Name:    "scan",
			Aliases: []string{"s"},
			Usage:   "Print LE advertising reports",
			Action:  scan,
			Flags:   []cli.Flag{flgDuration, flgActive, flgAllowDup},
		},
		{
			Name:    "adv",
			Aliases: []string{"a"},
			Usage:   "Advertise a name and report incoming connections",
			Action:  adv,
			Flags:   []cli.Flag{flgDuration, flgName},
		},
		{
			Name:    "monitor",
			Aliases: []string{"m"},
			Usage:   "Print raw events of one code",
			Action:  monitor,
			Flags:   []cli.Flag{flgDuration, flgEvent},
		},
	}

	app.Before = setup
	app.After = teardown
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) error {
	var (
		logger *zap.Logger
		err    error
	)
	if c.Bool("debug") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return errors.Wrap(err, "can't create logger")
	}
	zap.ReplaceGlobals(logger)

	opts := []controller.Option{
		controller.WithLogger(logger),
		controller.WithDefaultTimeout(c.Duration("timeout")),
	}
	if addr := c.String("metrics-addr"); addr != "" {
		m := controller.NewMetrics()
		reg := prometheus.NewRegistry()
		if err := m.Register(reg); err != nil {
			return errors.Wrap(err, "can't register metrics")
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		opts = append(opts, controller.WithMetrics(m))
	}

	switch c.Args().First() {
	case "", "help", "h":
		return nil
	}
	s, err := socket.NewSocket(c.Int("device"))
	if err != nil {
		return errors.Wrap(err, "can't open hci socket")
	}
	sck = s
	ctrl = controller.New(s, opts...)
	return nil
}

func teardown(c *cli.Context) error {
	_ = zap.L().Sync()
	if sck == nil {
		return nil
	}
	return sck.Close()
}

// listen returns a context cancelled by SIGINT or SIGTERM, and after d when
// d is positive.
func listen(d time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	if d <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	return ctx, func() {
		cancel()
		stop()
	}
}

func reset(c *cli.Context) error {
	return errors.Wrap(ctrl.Reset(context.Background()), "can't reset")
}

func addr(c *cli.Context) error {
	a, err := ctrl.ReadBDAddr(context.Background())
	if err != nil {
		return errors.Wrap(err, "can't read address")
	}
	fmt.Printf("hci%d\t%s\n", sck.Device(), a)
	return nil
}

func name(c *cli.Context) error {
	n, err := ctrl.ReadLocalName(context.Background())
	if err != nil {
		return errors.Wrap(err, "can't read name")
	}
	fmt.Printf("hci%d\t%s\n", sck.Device(), n)
	return nil
}

func remoteName(c *cli.Context) error {
	a, err := hci.ParseBDAddr(c.String("addr"))
	if err != nil {
		return err
	}
	n, err := ctrl.RemoteName(context.Background(), a)
	if err != nil {
		return errors.Wrapf(err, "can't read name of %s", a)
	}
	fmt.Printf("%s\t%s\n", a, n)
	return nil
}

func scan(c *cli.Context) error {
	ctx, cancel := listen(c.Duration("duration"))
	defer cancel()

	scanType := hci.LEScanTypePassive
	if c.Bool("active") {
		scanType = hci.LEScanTypeActive
	}
	if err := ctrl.LESetEventMask(ctx, hci.LEEventMaskAdvertisingReportEvent); err != nil {
		return errors.Wrap(err, "can't set le event mask")
	}
	if err := ctrl.LESetScanParameters(ctx, hci.LESetScanParametersCommand{
		LEScanType:     scanType,
		LEScanInterval: 0x0010,
		LEScanWindow:   0x0010,
		OwnAddressType: hci.OwnAddressTypePublicDeviceAddress,
	}); err != nil {
		return errors.Wrap(err, "can't set scan parameters")
	}
	if err := ctrl.LESetScanEnable(ctx, true, !c.Bool("dup")); err != nil {
		return errors.Wrap(err, "can't enable scanning")
	}
	defer func() {
		if err := ctrl.LESetScanEnable(context.Background(), false, false); err != nil {
			zap.L().Warn("can't disable scanning", zap.Error(err))
		}
	}()

	sub, err := ctrl.Subscribe(ctx, func() hci.EventParameter { return &hci.LEAdvertisingReport{} })
	if err != nil {
		return errors.Wrap(err, "can't subscribe")
	}
	defer sub.Close()
	for ev := range sub.Events() {
		for _, r := range ev.(*hci.LEAdvertisingReport).Reports {
			fmt.Printf("%s\t%3d dBm\t%x\n", r.Address, r.RSSI, r.Data)
		}
	}
	return sub.Close()
}

func adv(c *cli.Context) error {
	ctx, cancel := listen(c.Duration("duration"))
	defer cancel()

	if err := ctrl.SetEventMask(ctx,
		hci.EventMaskDisconnectionCompleteEvent|
			hci.EventMaskEncryptionChangeEvent|
			hci.EventMaskHardwareErrorEvent|
			hci.EventMaskEncryptionKeyRefreshCompleteEvent|
			hci.EventMaskLEMetaEvent); err != nil {
		return errors.Wrap(err, "can't set event mask")
	}
	if err := ctrl.LESetEventMask(ctx, hci.LEEventMaskConnectionCompleteEvent); err != nil {
		return errors.Wrap(err, "can't set le event mask")
	}
	if err := ctrl.SetAdvertisingData(ctx, []hci.DataType{
		hci.FlagsDataTypeLEGeneralDiscoverableMode | hci.FlagsDataTypeBREDRNotSupported,
		hci.CompleteLocalName(c.String("name")),
	}); err != nil {
		return errors.Wrap(err, "can't set advertising data")
	}
	if err := ctrl.LESetAdvertisingParameters(ctx, hci.LESetAdvertisingParametersCommand{
		AdvertisingIntervalMin: 100,
		AdvertisingIntervalMax: 120,
	}); err != nil {
		return errors.Wrap(err, "can't set advertising parameters")
	}
	if err := ctrl.LESetAdvertisingEnable(ctx, true); err != nil {
		return errors.Wrap(err, "can't enable advertising")
	}
	defer func() {
		if err := ctrl.LESetAdvertisingEnable(context.Background(), false); err != nil {
			zap.L().Warn("can't disable advertising", zap.Error(err))
		}
	}()

	sub, err := ctrl.Subscribe(ctx, func() hci.EventParameter { return &hci.LEConnectionComplete{} })
	if err != nil {
		return errors.Wrap(err, "can't subscribe")
	}
	defer sub.Close()
	for ev := range sub.Events() {
		cc := ev.(*hci.LEConnectionComplete)
		if err := hci.StatusError(cc.Status); err != nil {
			fmt.Printf("connection failed: %v\n", err)
			continue
		}
		fmt.Printf("connected\t%s\thandle 0x%04X\n", cc.PeerAddress, cc.ConnectionHandle)
	}
	return sub.Close()
}

func monitor(c *cli.Context) error {
	code, err := strconv.ParseUint(c.String("event"), 0, 8)
	if err != nil {
		return errors.Wrap(err, "can't parse event code")
	}
	ctx, cancel := listen(c.Duration("duration"))
	defer cancel()

	sub, err := ctrl.Subscribe(ctx, func() hci.EventParameter { return &hci.RawEvent{Code: hci.EventCode(code)} })
	if err != nil {
		return errors.Wrap(err, "can't subscribe")
	}
	defer sub.Close()
	for ev := range sub.Events() {
		fmt.Printf("%s\t% X\n", ev.EventCode(), ev.(*hci.RawEvent).Data)
	}
	return sub.Close()
}
