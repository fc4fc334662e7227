package model

import (
	"slices"
	"strconv"
	"strings"
)

// Song is a normalized track record produced from one vendor item.
// Images are ordered by decreasing resolution and may be empty.
type Song struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []string `json:"artists"`
	Images  []string `json:"images"`
}

// Equal reports structural equality over all four fields.
func (s Song) Equal(other Song) bool {
	return s.ID == other.ID &&
		s.Name == other.Name &&
		slices.Equal(s.Artists, other.Artists) &&
		slices.Equal(s.Images, other.Images)
}

// Key returns a string that is identical for two songs iff they are Equal.
// Fields are length-prefixed so separators inside names cannot collide.
func (s Song) Key() string {
	var b strings.Builder
	writeField(&b, s.ID)
	writeField(&b, s.Name)
	b.WriteByte('|')
	for _, a := range s.Artists {
		writeField(&b, a)
	}
	b.WriteByte('|')
	for _, img := range s.Images {
		writeField(&b, img)
	}
	return b.String()
}

// PrimaryImage returns the highest resolution image URL, if any.
func (s Song) PrimaryImage() (string, bool) {
	if len(s.Images) == 0 {
		return "", false
	}
	return s.Images[0], true
}

func writeField(b *strings.Builder, v string) {
	b.WriteString(strconv.Itoa(len(v)))
	b.WriteByte(':')
	b.WriteString(v)
}
