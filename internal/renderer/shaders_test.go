package renderer

import (
	"errors"
	"testing"

	"Sunlight/internal/gfx"
	"Sunlight/internal/gfx/gfxtest"
)

const (
	testVertexSource   = "attribute vec4 aPosition; void main() { gl_Position = aPosition; }"
	testFragmentSource = "precision mediump float; void main() { gl_FragColor = vec4(1.0); }"
)

func buildProgram(t *testing.T, cache *ShaderProgramCache, vertexSource, fragmentSource string) *Program {
	t.Helper()
	vertex, err := cache.CreateVertexShader(vertexSource)
	if err != nil {
		t.Fatalf("vertex shader: %v", err)
	}
	fragment, err := cache.CreateFragmentShader(fragmentSource)
	if err != nil {
		t.Fatalf("fragment shader: %v", err)
	}
	program, err := cache.CreateShaderProgram(vertex, fragment)
	if err != nil {
		t.Fatalf("program: %v", err)
	}
	return program
}

func TestCreateShaderProgramIsCachedBySources(t *testing.T) {
	rec := gfxtest.New()
	cache := NewShaderProgramCache(rec)

	first := buildProgram(t, cache, testVertexSource, testFragmentSource)
	second := buildProgram(t, cache, testVertexSource, testFragmentSource)

	if first != second {
		t.Error("identical sources should return the same program instance")
	}
	if n := rec.Count("LinkProgram"); n != 1 {
		t.Errorf("expected a single link, got %d", n)
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 cached program, got %d", cache.Len())
	}
}

func TestCreateShaderReportsCompileLog(t *testing.T) {
	rec := gfxtest.New()
	rec.CompileFailures["syntax error here"] = "0:1: error: unexpected token"
	cache := NewShaderProgramCache(rec)

	_, err := cache.CreateFragmentShader("syntax error here")

	var compileErr *ShaderCompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("expected ShaderCompileError, got %v", err)
	}
	if compileErr.Stage != gfx.FRAGMENT_SHADER {
		t.Errorf("expected fragment stage, got 0x%X", compileErr.Stage)
	}
	if compileErr.Log != "0:1: error: unexpected token" {
		t.Errorf("unexpected log %q", compileErr.Log)
	}
	if rec.LiveShaders() != 0 {
		t.Error("failed shader object should be deleted")
	}
}

func TestCreateShaderProgramReportsLinkError(t *testing.T) {
	rec := gfxtest.New()
	rec.LinkFailures["varying vec3 vMismatch"] = "varying vMismatch type mismatch"
	cache := NewShaderProgramCache(rec)

	vertex, _ := cache.CreateVertexShader("varying vec3 vMismatch;")
	fragment, _ := cache.CreateFragmentShader(testFragmentSource)
	_, err := cache.CreateShaderProgram(vertex, fragment)

	var linkErr *ShaderLinkError
	if !errors.As(err, &linkErr) {
		t.Fatalf("expected ShaderLinkError, got %v", err)
	}
	if rec.LivePrograms() != 0 {
		t.Error("failed program object should be deleted")
	}
}

func TestProgramUseRelinksAfterUnloadAll(t *testing.T) {
	rec := gfxtest.New()
	cache := NewShaderProgramCache(rec)
	program := buildProgram(t, cache, testVertexSource, testFragmentSource)
	cache.ReleaseShaderObjects()

	cache.UnloadAll()
	if program.Loaded() {
		t.Fatal("program should be unloaded")
	}
	if rec.LivePrograms() != 0 || rec.LiveShaders() != 0 {
		t.Errorf("expected no live handles, got %d programs %d shaders", rec.LivePrograms(), rec.LiveShaders())
	}

	if !program.Use() {
		t.Fatal("Use should relink the program")
	}
	if rec.CurrentProgram() != program.Handle() {
		t.Error("program should be current after Use")
	}
	if n := rec.Count("CompileShader"); n != 4 {
		t.Errorf("expected stages to be recompiled, got %d compiles", n)
	}
}

func TestProgramUseFailsWhenRelinkFails(t *testing.T) {
	rec := gfxtest.New()
	cache := NewShaderProgramCache(rec)
	program := buildProgram(t, cache, testVertexSource, testFragmentSource)

	cache.UnloadAll()
	rec.CompileFailures["gl_FragColor"] = "driver lost"

	if program.Use() {
		t.Error("Use should fail when the program cannot be relinked")
	}
}

func TestReleaseShaderObjectsKeepsProgramLinked(t *testing.T) {
	rec := gfxtest.New()
	cache := NewShaderProgramCache(rec)
	program := buildProgram(t, cache, testVertexSource, testFragmentSource)

	cache.ReleaseShaderObjects()

	if rec.LiveShaders() != 0 {
		t.Errorf("expected shader objects deleted, %d live", rec.LiveShaders())
	}
	if !program.Loaded() || !program.Use() {
		t.Error("program should stay usable")
	}
}

func TestShaderCacheCleanUp(t *testing.T) {
	rec := gfxtest.New()
	cache := NewShaderProgramCache(rec)
	buildProgram(t, cache, testVertexSource, testFragmentSource)

	cache.UnloadAll()
	cache.CleanUp()

	if cache.Len() != 0 || len(cache.shaders) != 0 {
		t.Error("CleanUp should drop unloaded entries")
	}
}

func TestShaderCacheEmptyCleanupIsNoop(t *testing.T) {
	rec := gfxtest.New()
	cache := NewShaderProgramCache(rec)

	cache.UnloadAll()
	cache.CleanUp()
	cache.ReleaseShaderObjects()

	if len(rec.Calls) != 0 {
		t.Errorf("expected no GL calls, got %v", rec.Names())
	}
}

func TestProgramReloadRegistersAgain(t *testing.T) {
	rec := gfxtest.New()
	cache := NewShaderProgramCache(rec)
	program := buildProgram(t, cache, testVertexSource, testFragmentSource)

	cache.UnloadAll()
	cache.CleanUp()
	if !program.Use() {
		t.Fatal("Use should relink a forgotten program")
	}
	if cache.Len() != 1 {
		t.Fatalf("relinked program should be cached again, Len() = %d", cache.Len())
	}

	cache.UnloadAll()
	if rec.LivePrograms() != 0 || rec.LiveShaders() != 0 {
		t.Errorf("UnloadAll left %d programs and %d shaders", rec.LivePrograms(), rec.LiveShaders())
	}
}
