package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Every node in a document carries an id that is unique within the whole
// tree, nested cell documents included. Ids are handed out by an IDSource
// that the caller injects into constructors and edit operations; the model
// never invents identity on its own.
type IDSource interface {
	// NewID returns an id that has never been returned before by this
	// source.
	NewID() string
}

type uuidSource struct{}

func (uuidSource) NewID() string {
	return uuid.New().String()
}

// UUIDs returns the production id source, backed by random UUIDs.
func UUIDs() IDSource {
	return uuidSource{}
}

// A sequence source yields "p1", "p2", ... for a given prefix. Trees built
// with it are reproducible, which the tests and the builder rely on.
type SeqSource struct {
	prefix string
	n      int
}

func NewSeq(prefix string) *SeqSource {
	return &SeqSource{prefix: prefix}
}

func (s *SeqSource) NewID() string {
	s.n++
	return fmt.Sprintf("%s%d", s.prefix, s.n)
}
