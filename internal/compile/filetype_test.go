package compile

import "testing"

func TestPlainNotCompileable(t *testing.T) {
	if Plain.Compileable() {
		t.Fatal("Plain should not be compileable")
	}
	if _, err := Plain.CompileSandbox("a", "b", "c"); err == nil {
		t.Fatal("expected an error compiling Plain")
	}
}

func TestCompileableTypesAreCompileable(t *testing.T) {
	for _, ft := range []FileType{GnuCpp20O2, GnuCpp17O2, GnuCpp14O2, Rust, GnuAssembly} {
		if !ft.Compileable() {
			t.Fatalf("%s should be compileable", ft)
		}
	}
}

func TestExt(t *testing.T) {
	if GnuCpp17O2.Ext() != ".cpp" {
		t.Fatalf("got %q, want .cpp", GnuCpp17O2.Ext())
	}
	if Python3.Ext() != ".py" {
		t.Fatalf("got %q, want .py", Python3.Ext())
	}
}
