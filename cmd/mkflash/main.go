//go:build cgo && !tinygo

// Command mkflash packs calibration records into a littlefs image for the
// firmware's flash store, so a rebuilt board starts out calibrated.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"balancer/config"
	"balancer/internal/buildinfo"
	"balancer/store"
	"balancer/tasks/imu"
	"balancer/tasks/touchpanel"

	"github.com/urfave/cli"
)

const (
	defaultImagePath = "Flash.bin"
	defaultImageSize = 256 << 10
	defaultEraseSize = 4096
)

func main() {
	app := cli.NewApp()
	app.Name = "mkflash"
	app.Usage = "build a flash image holding balancer records"
	app.Version = buildinfo.Short()
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "src",
			Usage: "directory holding the records (required)",
		},
		cli.StringFlag{
			Name:  "out",
			Value: defaultImagePath,
			Usage: "output image",
		},
		cli.UintFlag{
			Name:  "size",
			Value: defaultImageSize,
			Usage: "image size in bytes",
		},
		cli.UintFlag{
			Name:  "erase",
			Value: defaultEraseSize,
			Usage: "erase block size in bytes",
		},
	}
	app.Action = func(c *cli.Context) error {
		if c.String("src") == "" {
			return cli.NewExitError("--src is required", 2)
		}
		cfg, err := config.FromEnv()
		if err != nil {
			return err
		}
		names, err := pack(c.String("src"), c.String("out"), uint32(c.Uint("size")), uint32(c.Uint("erase")), cfg)
		if err != nil {
			return err
		}
		for _, n := range names {
			log.Printf("packed %s", n)
		}
		return nil
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// pack copies every regular file at the top of srcDir into a new image.
// Calibration records are checked before they are written.
func pack(srcDir, outPath string, size, eraseSize uint32, cfg config.Config) ([]string, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read src %q: %w", srcDir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	img, err := createImage(outPath, size, eraseSize)
	if err != nil {
		return nil, err
	}
	defer func() { _ = img.Close() }()

	st, err := store.NewFlash(img)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(srcDir, name))
		if err != nil {
			return nil, err
		}
		if err := check(name, data, cfg); err != nil {
			return nil, err
		}
		if err := st.WriteFile(name, data); err != nil {
			return nil, err
		}
	}
	return names, st.Close()
}

func check(name string, data []byte, cfg config.Config) error {
	line, _, _ := strings.Cut(string(data), "\n")

	var err error
	switch name {
	case cfg.Touch.CalFile:
		_, err = touchpanel.ParseRecord(line)
	case cfg.IMU.CalFile:
		_, err = imu.ParseBlob(line)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
