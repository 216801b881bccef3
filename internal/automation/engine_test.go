//go:build !no_automation

package automation

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"people-crud/internal/records"
	"people-crud/internal/store"
)

// syncBuffer collects log output written from VM goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	svc    *records.Service
	dir    string
	logs   *syncBuffer
	logger *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logs := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))

	db, err := store.NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return &testEnv{
		svc:    records.NewService(db, records.NewEventBus(logger), logger),
		dir:    t.TempDir(),
		logs:   logs,
		logger: logger,
	}
}

func (env *testEnv) start(t *testing.T) *Engine {
	t.Helper()
	mgr, err := NewManager(env.dir)
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(env.svc, mgr, env.logger)
	e.Start()
	t.Cleanup(e.Stop)
	return e
}

func (env *testEnv) waitLog(t *testing.T, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(env.logs.String(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("log %q not found in:\n%s", want, env.logs.String())
}

func input(name string, age float64, city string) store.RecordInput {
	return store.RecordInput{Name: &name, Age: &age, City: &city}
}

func TestEngineStartsEnabledScripts(t *testing.T) {
	env := newTestEnv(t)
	writeScript(t, env.dir, "on.lua", "-- {\"name\": \"On\", \"enabled\": true}\nrecords.log(\"loaded on\")\n")
	writeScript(t, env.dir, "off.lua", "-- {\"name\": \"Off\", \"enabled\": false}\nrecords.log(\"loaded off\")\n")
	writeScript(t, env.dir, "broken.lua", "-- {\"name\": \"Broken\", \"enabled\": true}\nthis is not lua\n")

	e := env.start(t)

	running := e.Running()
	if len(running) != 1 || running[0] != "on" {
		t.Errorf("running = %v, want [on]", running)
	}
	env.waitLog(t, "loaded on")
	if strings.Contains(env.logs.String(), "loaded off") {
		t.Error("disabled script was executed")
	}
	env.waitLog(t, "execute script broken")
}

func TestEngineHandlesCreated(t *testing.T) {
	env := newTestEnv(t)
	writeScript(t, env.dir, "count.lua", `-- {"name": "Count", "enabled": true}
records.on("record_created", function(ev)
  records.log("created " .. ev.name .. " in " .. ev.city .. " total " .. records.count())
end)
`)
	env.start(t)

	if _, err := env.svc.Create(input("Ann", 30, "Linz")); err != nil {
		t.Fatal(err)
	}
	env.waitLog(t, "created Ann in Linz total 1")
}

func TestEngineFilterByID(t *testing.T) {
	env := newTestEnv(t)
	watched, err := env.svc.Create(input("Ann", 30, "Linz"))
	if err != nil {
		t.Fatal(err)
	}
	other, err := env.svc.Create(input("Bo", 41, "Graz"))
	if err != nil {
		t.Fatal(err)
	}

	writeScript(t, env.dir, "watch.lua", `-- {"name": "Watch", "enabled": true}
records.on("record_updated", {id = "`+watched.ID+`"}, function(ev)
  local r = records.get(ev.id)
  records.log("watched now in " .. r.city)
end)
`)
	env.start(t)

	city := "Graz-Umgebung"
	if _, err := env.svc.Update(other.ID, store.RecordInput{City: &city}); err != nil {
		t.Fatal(err)
	}
	city = "Wien"
	if _, err := env.svc.Update(watched.ID, store.RecordInput{City: &city}); err != nil {
		t.Fatal(err)
	}
	env.waitLog(t, "watched now in Wien")
	if strings.Contains(env.logs.String(), "Graz-Umgebung") {
		t.Error("handler fired for a filtered-out record")
	}
}

func TestEngineGetUnknownReturnsNil(t *testing.T) {
	env := newTestEnv(t)
	writeScript(t, env.dir, "get.lua", `-- {"name": "Get", "enabled": true}
records.log("missing=" .. tostring(records.get("0192b3a4-0000-7000-8000-000000000000")))
records.log("malformed=" .. tostring(records.get("nope")))
`)
	env.start(t)

	env.waitLog(t, "missing=nil")
	env.waitLog(t, "malformed=nil")
}

func TestEngineSandbox(t *testing.T) {
	env := newTestEnv(t)
	writeScript(t, env.dir, "sandbox.lua", `-- {"name": "Sandbox", "enabled": true}
records.log("os=" .. tostring(os) .. " io=" .. tostring(io) .. " require=" .. tostring(require))
`)
	env.start(t)

	env.waitLog(t, "os=nil io=nil require=nil")
}

func TestEngineStopUnsubscribes(t *testing.T) {
	env := newTestEnv(t)
	writeScript(t, env.dir, "del.lua", `-- {"name": "Del", "enabled": true}
records.on("record_deleted", function(ev) records.log("deleted " .. ev.id) end)
`)
	mgr, err := NewManager(env.dir)
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(env.svc, mgr, env.logger)
	e.Start()
	e.Stop()

	if len(e.Running()) != 0 {
		t.Errorf("running after stop = %v", e.Running())
	}
	rec, err := env.svc.Create(input("Ann", 30, "Linz"))
	if err != nil {
		t.Fatal(err)
	}
	if err := env.svc.Delete(rec.ID); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if strings.Contains(env.logs.String(), "deleted "+rec.ID) {
		t.Error("handler ran after stop")
	}
}

func TestMatchesHandler(t *testing.T) {
	ev := records.Event{Type: records.EventRecordUpdated, Data: map[string]interface{}{"id": "abc"}}

	tests := []struct {
		name string
		h    luaEventHandler
		want bool
	}{
		{"type match", luaEventHandler{eventType: records.EventRecordUpdated}, true},
		{"type mismatch", luaEventHandler{eventType: records.EventRecordCreated}, false},
		{"id match", luaEventHandler{eventType: records.EventRecordUpdated, id: "abc"}, true},
		{"id mismatch", luaEventHandler{eventType: records.EventRecordUpdated, id: "xyz"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesHandler(tt.h, ev); got != tt.want {
				t.Errorf("matchesHandler = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGoToLua(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	tests := []struct {
		name string
		val  interface{}
		want lua.LValueType
	}{
		{"nil", nil, lua.LTNil},
		{"bool", true, lua.LTBool},
		{"string", "hello", lua.LTString},
		{"int", 42, lua.LTNumber},
		{"int64", int64(99), lua.LTNumber},
		{"float64", 3.14, lua.LTNumber},
		{"map", map[string]interface{}{"a": 1}, lua.LTTable},
		{"slice", []interface{}{1, 2, 3}, lua.LTTable},
		{"unknown", struct{}{}, lua.LTString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := goToLua(L, tt.val)
			if result.Type() != tt.want {
				t.Errorf("goToLua(%v) type = %v, want %v", tt.val, result.Type(), tt.want)
			}
		})
	}
}
