package ticket

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/speps/go-hashids/v2"
)

const (
	prefix = "GT"
	// Uppercase alphanumerics without the lookalikes 0/O/1/I.
	alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Generator issues ticket IDs of the form GT-<time>-<random>: a millisecond
// timestamp and a random draw, each hashids-encoded in a fixed alphabet.
// IDs are not re-checked for collisions before insert; the unique index on
// the ticket column is the backstop.
type Generator struct {
	h *hashids.HashID
}

func NewGenerator(salt string) (*Generator, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 6
	data.Alphabet = alphabet

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("building hashid encoder: %w", err)
	}
	return &Generator{h: h}, nil
}

func (g *Generator) Generate() (string, error) {
	timePart, err := g.h.EncodeInt64([]int64{time.Now().UnixMilli()})
	if err != nil {
		return "", err
	}

	id := uuid.New()
	random := int64(binary.BigEndian.Uint32(id[:4]))
	randomPart, err := g.h.EncodeInt64([]int64{random})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%s-%s", prefix, timePart, randomPart), nil
}
