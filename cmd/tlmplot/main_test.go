//go:build !tinygo

package main

import (
	"os"
	"path/filepath"
	"testing"

	"balancer/tasks/datalog"
)

func TestWithContact(t *testing.T) {
	rows := []datalog.Row{{TimeMS: 50, Contact: true}, {TimeMS: 100}, {TimeMS: 150, Contact: true}}
	got := withContact(rows)
	if len(got) != 2 || got[1].TimeMS != 150 {
		t.Fatalf("withContact() = %+v", got)
	}
	if len(rows) != 3 || rows[1].TimeMS != 100 {
		t.Fatal("input rows modified")
	}
}

func TestRenderWritesPNG(t *testing.T) {
	rows := []datalog.Row{
		{TimeMS: 50, Contact: true, XPos: 1, YPos: -1},
		{TimeMS: 100, Contact: true, XPos: 2, YPos: -2},
		{TimeMS: 150, Contact: true, XPos: 3, YPos: -3},
	}
	path := filepath.Join(t.TempDir(), "position.png")
	if err := render(charts[0], rows, path); err != nil {
		t.Fatalf("render() = %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) < 8 || string(b[1:4]) != "PNG" {
		t.Fatalf("output is not a PNG (%d bytes)", len(b))
	}
}
