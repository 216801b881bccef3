package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"people-crud/internal/client"
	"people-crud/internal/records"
	"people-crud/internal/store"
	"people-crud/internal/ui"
	"people-crud/internal/web"
)

func newTestREPL(t *testing.T, input string) (*repl, *bytes.Buffer, *store.BoltStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := store.NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	srv, err := web.NewServer(records.NewService(db, records.NewEventBus(logger), logger), logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(srv.Stop)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	api, err := client.New(ts.URL)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	r := newREPL(strings.NewReader(input), &out)
	r.ctl = ui.NewController(api, r.confirm, logger)
	return r, &out, db
}

func TestREPLSession(t *testing.T) {
	input := strings.Join([]string{
		"add",
		"set name Ann",
		"set age 30",
		"set city Linz",
		"save",
		"add",
		"set name Bo",
		"set age 41",
		"save",
		"set city Graz",
		"save",
		"search linz",
		"edit 1",
		"set city Wien",
		"save",
		"search",
		"rm 1",
		"y",
		"quit",
	}, "\n") + "\n"

	r, out, db := newTestREPL(t, input)
	if err := r.run(context.Background()); err != nil {
		t.Fatal(err)
	}

	recs, err := db.ListRecords()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1\n%s", len(recs), out)
	}
	if recs[0].Name != "Bo" || recs[0].Age != 41 || recs[0].City != "Graz" {
		t.Errorf("record = %+v", recs[0])
	}

	text := out.String()
	for _, want := range []string{
		"Add New Record",
		ui.ValidationMessage,
		"Edit Record",
		"1 of 2 records match \"linz\"",
		ui.DeletePrompt,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestREPLDeleteDeclined(t *testing.T) {
	r, out, db := newTestREPL(t, "rm 1\nn\nquit\n")
	name, age, city := "Ann", 30.0, "Linz"
	if _, err := db.CreateRecord(store.RecordInput{Name: &name, Age: &age, City: &city}); err != nil {
		t.Fatal(err)
	}

	if err := r.run(context.Background()); err != nil {
		t.Fatal(err)
	}
	recs, err := db.ListRecords()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Errorf("records = %d, want 1\n%s", len(recs), out)
	}
}

func TestREPLBadRows(t *testing.T) {
	r, out, _ := newTestREPL(t, "edit 1\nrm x\nset name Ann\nbogus\nquit\n")
	if err := r.run(context.Background()); err != nil {
		t.Fatal(err)
	}

	text := out.String()
	for _, want := range []string{
		`no row "1"`,
		`no row "x"`,
		"no open form",
		`unknown command "bogus"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if r.ctl.State().ModalOpen {
		t.Error("form opened for a missing row")
	}
}

func TestFormatAge(t *testing.T) {
	tests := map[float64]string{30: "30", 2.5: "2.5", 0: "0"}
	for age, want := range tests {
		if got := formatAge(age); got != want {
			t.Errorf("formatAge(%v) = %q, want %q", age, got, want)
		}
	}
}
