//go:build !tinygo

// Command bbconsole bridges the terminal to the balancer's operator serial
// line.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"balancer/internal/buildinfo"

	"github.com/urfave/cli"
	"go.bug.st/serial"
)

func main() {
	app := cli.NewApp()
	app.Name = "bbconsole"
	app.Usage = "talk to the ball balancer over USB serial"
	app.Version = buildinfo.Short()
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "port",
			Value: "/dev/ttyACM0",
			Usage: "serial device",
		},
		cli.IntFlag{
			Name:  "baud",
			Value: 115200,
			Usage: "line speed",
		},
		cli.BoolFlag{
			Name:  "list",
			Usage: "list serial ports and exit",
		},
	}
	app.Action = func(c *cli.Context) error {
		if c.Bool("list") {
			ports, err := serial.GetPortsList()
			if err != nil {
				return err
			}
			for _, p := range ports {
				fmt.Println(p)
			}
			return nil
		}

		port, err := serial.Open(c.String("port"), &serial.Mode{BaudRate: c.Int("baud")})
		if err != nil {
			return fmt.Errorf("open %s: %w", c.String("port"), err)
		}
		defer port.Close()
		log.Printf("connected to %s at %d baud, Ctrl-C to quit", c.String("port"), c.Int("baud"))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return bridge(ctx, port, os.Stdin, os.Stdout)
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
