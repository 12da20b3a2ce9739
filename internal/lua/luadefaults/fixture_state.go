package luadefaults

import lua "github.com/yuin/gopher-lua"

// NewFixtureState returns a *lua.LState that can only build data: it has the
// base, table, string and math libs but no io, os or debug access and no way
// to load code from disk.
func NewFixtureState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	InjectFixtureLibs(L)
	return L
}

// InjectFixtureLibs loads the libs allowed for fixture scripts into L
func InjectFixtureLibs(L *lua.LState) {
	for _, pair := range []struct {
		n string
		f lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage}, // Must be first
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(pair.f),
			NRet:    0,
			Protect: true,
		}, lua.LString(pair.n)); err != nil {
			panic(err)
		}
	}
	// the base and package libs can still read files
	for _, name := range []string{"dofile", "loadfile", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	if pkg, ok := L.GetGlobal(lua.LoadLibName).(*lua.LTable); ok {
		pkg.RawSetString("loaders", L.NewTable())
		pkg.RawSetString("path", lua.LString(""))
		pkg.RawSetString("cpath", lua.LString(""))
	}
}
