package assembler

import (
	"errors"
	"testing"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/masmir"
)

func TestUnavailableAssembleText(t *testing.T) {
	_, err := Unavailable().AssembleText("my_module", "begin end")

	if !errors.Is(err, ErrNoAssembler) {
		t.Fatalf("expected ErrNoAssembler, got %v", err)
	}
}

func TestUnavailableAssembleArtifact(t *testing.T) {
	_, err := Unavailable().AssembleArtifact(&masmir.Library{})

	if !errors.Is(err, ErrNoAssembler) {
		t.Fatalf("expected ErrNoAssembler, got %v", err)
	}
}
