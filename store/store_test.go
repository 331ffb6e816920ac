package store

import (
	"errors"
	"testing"
)

// exerciseStore runs the record contract against any Store.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	if _, err := s.ReadFile("missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReadFile(missing) = %v, want ErrNotFound", err)
	}
	if _, err := ReadLine(s, "missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReadLine(missing) = %v, want ErrNotFound", err)
	}

	if err := s.WriteFile("cal.txt", []byte("1, 0, 0, 1, 0, 0\r\nignored\r\n")); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}
	line, err := ReadLine(s, "cal.txt")
	if err != nil || line != "1, 0, 0, 1, 0, 0" {
		t.Fatalf("ReadLine() = %q, %v", line, err)
	}

	if err := s.WriteFile("cal.txt", []byte("2\r\n")); err != nil {
		t.Fatal(err)
	}
	if line, _ := ReadLine(s, "cal.txt"); line != "2" {
		t.Fatalf("WriteFile did not truncate: %q", line)
	}

	if err := s.AppendFile("log.txt", []byte("a\n")); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendFile("log.txt", []byte("b\n")); err != nil {
		t.Fatal(err)
	}
	b, err := s.ReadFile("log.txt")
	if err != nil || string(b) != "a\nb\n" {
		t.Fatalf("ReadFile(log) = %q, %v", b, err)
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	exerciseStore(t, m)
	if got := m.Writes("log.txt"); got != 2 {
		t.Fatalf("Writes(log) = %d, want 2", got)
	}
}

func TestReadLineWithoutTerminator(t *testing.T) {
	m := NewMemory()
	_ = m.WriteFile("x", []byte("only"))
	if line, err := ReadLine(m, "x"); err != nil || line != "only" {
		t.Fatalf("ReadLine() = %q, %v", line, err)
	}
}
