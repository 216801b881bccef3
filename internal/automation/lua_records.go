//go:build !no_automation

package automation

import (
	"errors"

	lua "github.com/yuin/gopher-lua"

	"people-crud/internal/store"
)

const maxHandlersPerScript = 100

// registerRecordsModule registers the `records` global table in a Lua state.
func registerRecordsModule(L *lua.LState, vm *scriptVM, e *Engine, scriptID string) {
	mod := L.NewTable()

	mod.RawSetString("on", L.NewFunction(func(L *lua.LState) int {
		return recordsOn(L, vm)
	}))

	mod.RawSetString("log", L.NewFunction(func(L *lua.LState) int {
		e.logger.Info("script log", "script", scriptID, "msg", L.CheckString(1))
		return 0
	}))

	mod.RawSetString("get", L.NewFunction(func(L *lua.LState) int {
		return recordsGet(L, e)
	}))

	mod.RawSetString("count", L.NewFunction(func(L *lua.LState) int {
		return recordsCount(L, e)
	}))

	L.SetGlobal("records", mod)
}

// records.on(type, [filter], callback)
func recordsOn(L *lua.LState, vm *scriptVM) int {
	eventType := L.CheckString(1)
	h := luaEventHandler{eventType: eventType}

	if L.GetTop() >= 3 {
		filter := L.CheckTable(2)
		if v := filter.RawGetString("id"); v != lua.LNil {
			h.id = v.String()
		}
		h.fn = L.CheckFunction(3)
	} else {
		h.fn = L.CheckFunction(2)
	}

	vm.mu.Lock()
	if len(vm.handlers) >= maxHandlersPerScript {
		vm.mu.Unlock()
		L.RaiseError("too many handlers (max %d)", maxHandlersPerScript)
		return 0
	}
	vm.handlers = append(vm.handlers, h)
	vm.mu.Unlock()

	return 0
}

// records.get(id) -> table or nil
func recordsGet(L *lua.LState, e *Engine) int {
	id := L.CheckString(1)
	rec, err := e.svc.Get(id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrInvalidID) {
			e.logger.Error("script record lookup", "id", id, "err", err)
		}
		L.Push(lua.LNil)
		return 1
	}
	L.Push(recordToLua(L, rec))
	return 1
}

// records.count() -> number
func recordsCount(L *lua.LState, e *Engine) int {
	recs, err := e.svc.List()
	if err != nil {
		L.RaiseError("count records: %s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(len(recs)))
	return 1
}

func recordToLua(L *lua.LState, rec *store.Record) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(rec.ID))
	t.RawSetString("name", lua.LString(rec.Name))
	t.RawSetString("age", lua.LNumber(rec.Age))
	t.RawSetString("city", lua.LString(rec.City))
	return t
}
