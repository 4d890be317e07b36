package errors

import (
	"strings"
	"testing"
)

func TestE(t *testing.T) {
	err := E(Op("engine.Get"), KeyNotFound)
	if !Is(KeyNotFound, err) {
		t.Fatalf("Is(KeyNotFound, %v) = false, want true", err)
	}
	want := "engine.Get: key not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestEPullsUpKind(t *testing.T) {
	inner := E(Op("logio.Read"), Io, Errorf("short read"))
	outer := E(Op("engine.Get"), inner)
	if !Is(Io, outer) {
		t.Fatalf("Is(Io, %v) = false, want true", outer)
	}
	if !strings.Contains(outer.Error(), "engine.Get") {
		t.Errorf("Error() = %q, want it to mention engine.Get", outer.Error())
	}
}

func TestIsFalseForPlainError(t *testing.T) {
	if Is(Io, Str("boom")) {
		t.Error("Is(Io, plain error) = true, want false")
	}
}

func TestErrorfWraps(t *testing.T) {
	err := E(Op("wire.Decode"), Serde, Errorf("unexpected token at byte %d", 12))
	if !strings.Contains(err.Error(), "byte 12") {
		t.Errorf("Error() = %q, want it to mention the offset", err.Error())
	}
}

func TestKindNameRoundTrips(t *testing.T) {
	for _, k := range []Kind{Other, Io, Serde, KeyNotFound, UnexpectedCommandType, Utf8, StringError} {
		if got := ParseKind(k.Name()); got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.Name(), got, k)
		}
	}
}

func TestParseKindUnknownNameIsOther(t *testing.T) {
	if got := ParseKind("not-a-kind"); got != Other {
		t.Errorf("ParseKind(unknown) = %v, want Other", got)
	}
}

func TestKindOf(t *testing.T) {
	err := E(Op("engine.Remove"), KeyNotFound)
	if got := KindOf(err); got != KeyNotFound {
		t.Errorf("KindOf(%v) = %v, want KeyNotFound", err, got)
	}
	if got := KindOf(Str("plain")); got != Other {
		t.Errorf("KindOf(plain error) = %v, want Other", got)
	}
}
