package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/proxytools/go-proxybind/pkg/errors"
)

func TestKindPredicates(t *testing.T) {
	pre := errors.New(errors.KindPrecondition, "request.Init", "descriptor already attached")
	parse := errors.New(errors.KindParse, "ParseURL", "invalid url")
	eng := errors.New(errors.KindEngine, "CreateBuffer", "allocation failed")

	if !errors.IsPrecondition(pre) || errors.IsParse(pre) || errors.IsEngine(pre) {
		t.Fatal("precondition kind misclassified")
	}
	if !errors.IsParse(parse) || errors.IsPrecondition(parse) {
		t.Fatal("parse kind misclassified")
	}
	if !errors.IsEngine(eng) || errors.IsParse(eng) {
		t.Fatal("engine kind misclassified")
	}
	if errors.IsPrecondition(nil) || errors.IsPrecondition(stderrors.New("plain")) {
		t.Fatal("non-Error values must not classify")
	}
}

func TestWrapping(t *testing.T) {
	cause := stderrors.New("root cause")
	err := errors.Wrap(errors.KindEngine, "DestroyBuffer", "release failed", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("wrapped cause must be reachable via errors.Is")
	}
	wrapped := fmt.Errorf("outer: %w", err)
	if !errors.IsEngine(wrapped) {
		t.Fatal("kind must survive further wrapping")
	}
}

func TestErrorString(t *testing.T) {
	err := errors.New(errors.KindParse, "ParseURL", "invalid url")
	want := "proxybind: ParseURL: invalid url (parse)"
	if got := err.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
