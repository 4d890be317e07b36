package log

import (
	"fmt"
	"testing"
)

func TestLogLevel(t *testing.T) {
	const (
		msg2  = "log line2"
		msg3  = "log line3"
		level = "info"
	)
	setFakeLogger(fmt.Sprintf("%shello: %s", msg2, msg3))

	SetLevel(level)
	if GetLevel() != level {
		t.Fatalf("GetLevel() = %q, want %q", GetLevel(), level)
	}
	Debug.Println("log line1") // not logged: below info
	Info.Print(msg2)           // logged
	Error.Printf("hello: %s", msg3)

	defaultLogger.(*fakeLogger).Verify(t)
}

func TestDisable(t *testing.T) {
	setFakeLogger("Starting server...")
	SetLevel("debug")
	Debug.Printf("Starting server...")
	SetLevel("disabled")
	Error.Printf("Important stuff you'll miss!")
	defaultLogger.(*fakeLogger).Verify(t)
}

func TestAt(t *testing.T) {
	SetLevel("info")
	if At("debug") {
		t.Error("At(debug) = true, want false when level is info")
	}
	if !At("error") {
		t.Error("At(error) = false, want true when level is info")
	}
	if At("not a real level") {
		t.Error("At(invalid level) = true, want false (nothing logs at an unknown level)")
	}
}

func setFakeLogger(expected string) {
	defaultLogger = &fakeLogger{expected: expected}
}

type fakeLogger struct {
	logged   string
	expected string
}

func (ml *fakeLogger) Printf(format string, v ...interface{}) { ml.logged += fmt.Sprintf(format, v...) }
func (ml *fakeLogger) Print(v ...interface{})                 { ml.logged += fmt.Sprint(v...) }
func (ml *fakeLogger) Println(v ...interface{})               { ml.logged += fmt.Sprintln(v...) }

func (ml *fakeLogger) Verify(t *testing.T) {
	if ml.logged != ml.expected {
		t.Errorf("logged %q, want %q", ml.logged, ml.expected)
	}
}
