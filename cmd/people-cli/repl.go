package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"people-crud/internal/ui"
)

const helpText = `commands:
  ls                   show the table
  search [text]        filter by name or city (no text clears)
  add                  open an empty form
  edit <row>           open the form for a row
  set <field> <value>  set name, age or city in the open form
  save                 submit the form
  close                discard the form
  rm <row>             delete a row
  reload               fetch all records again
  quit                 exit
`

type repl struct {
	ctl  *ui.Controller
	in   *bufio.Scanner
	out  io.Writer
	rows []string // ids of the rows last shown, row n is rows[n-1]
}

func newREPL(in io.Reader, out io.Writer) *repl {
	return &repl{in: bufio.NewScanner(in), out: out}
}

// confirm asks a yes/no question on the same input stream.
func (r *repl) confirm(prompt string) bool {
	fmt.Fprintf(r.out, "%s [y/N] ", prompt)
	if !r.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(r.in.Text()))
	return answer == "y" || answer == "yes"
}

func (r *repl) run(ctx context.Context) error {
	if err := r.ctl.Load(ctx); err != nil {
		fmt.Fprintln(r.out, "could not load records:", err)
	}
	r.render()

	for {
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			return r.in.Err()
		}
		if quit := r.exec(ctx, r.in.Text()); quit {
			return nil
		}
	}
}

// exec runs one command line and reports whether the session should end.
func (r *repl) exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprint(r.out, helpText)
	case "ls":
		r.render()
	case "search":
		r.ctl.Search(arg)
		r.render()
	case "reload":
		if err := r.ctl.Load(ctx); err != nil {
			fmt.Fprintln(r.out, "could not load records:", err)
			return false
		}
		r.render()
	case "add":
		r.ctl.OpenCreate()
		r.renderForm()
	case "edit":
		id, ok := r.rowID(arg)
		if !ok {
			return false
		}
		r.ctl.OpenEdit(id)
		r.renderForm()
	case "set":
		r.set(arg)
	case "save":
		r.save(ctx)
	case "close":
		r.ctl.Close()
		r.render()
	case "rm":
		r.remove(ctx, arg)
	default:
		fmt.Fprintf(r.out, "unknown command %q, try help\n", cmd)
	}
	return false
}

func (r *repl) set(arg string) {
	if !r.ctl.State().ModalOpen {
		fmt.Fprintln(r.out, "no open form, use add or edit")
		return
	}
	name, value, _ := strings.Cut(arg, " ")
	f := ui.Field(strings.ToLower(name))
	switch f {
	case ui.FieldName, ui.FieldAge, ui.FieldCity:
	default:
		fmt.Fprintf(r.out, "unknown field %q (name, age, city)\n", name)
		return
	}
	r.ctl.SetField(f, value)
	r.renderForm()
}

func (r *repl) save(ctx context.Context) {
	if !r.ctl.State().ModalOpen {
		fmt.Fprintln(r.out, "no open form, use add or edit")
		return
	}
	if err := r.ctl.Submit(ctx); err != nil {
		if errors.Is(err, ui.ErrIncompleteForm) {
			r.renderForm()
			return
		}
		fmt.Fprintln(r.out, "save failed:", err)
		return
	}
	r.render()
}

func (r *repl) remove(ctx context.Context, arg string) {
	id, ok := r.rowID(arg)
	if !ok {
		return
	}
	deleted, err := r.ctl.Remove(ctx, id)
	if err != nil {
		fmt.Fprintln(r.out, "delete failed:", err)
		return
	}
	if deleted {
		r.render()
	}
}

func (r *repl) rowID(arg string) (string, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(r.rows) {
		fmt.Fprintf(r.out, "no row %q, use ls to see row numbers\n", arg)
		return "", false
	}
	return r.rows[n-1], true
}

func (r *repl) render() {
	st := r.ctl.State()
	recs := st.Filtered()

	r.rows = r.rows[:0]
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "S.no\tName\tAge\tCity")
	for i, rec := range recs {
		r.rows = append(r.rows, rec.ID)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, rec.Name, formatAge(rec.Age), rec.City)
	}
	tw.Flush()
	if st.Search != "" {
		fmt.Fprintf(r.out, "%d of %d records match %q\n", len(recs), len(st.Records), st.Search)
	}
}

func (r *repl) renderForm() {
	st := r.ctl.State()
	if !st.ModalOpen {
		return
	}
	title := "Add New Record"
	if _, editing := st.Mode.Target(); editing {
		title = "Edit Record"
	}
	fmt.Fprintln(r.out, title)
	if st.ShowValidation {
		fmt.Fprintln(r.out, ui.ValidationMessage)
	}
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  name\t%s\n", st.Form.Name)
	fmt.Fprintf(tw, "  age\t%s\n", st.Form.Age)
	fmt.Fprintf(tw, "  city\t%s\n", st.Form.City)
	tw.Flush()
}

func formatAge(age float64) string {
	return strconv.FormatFloat(age, 'f', -1, 64)
}
