// Package control contains the pure business logic for placed form controls:
// projection fingerprints and the ordering plans behind add, remove, move
// and reorder. No I/O, only pure functions.
package control

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/example/formcraft/internal/ports/secondary"
)

// InitialFingerprint is the fingerprint of a projection that has never been loaded.
// No control list, including the empty one, fingerprints to this value.
const InitialFingerprint = ""

// Fingerprint computes a content fingerprint over the controls' identity and
// ordering-relevant fields: (id, type, name, sectionId, y, propertyCount),
// sorted by id so that any permutation of the same set yields the same value.
func Fingerprint(controls []*secondary.ControlRecord) string {
	sorted := make([]*secondary.ControlRecord, 0, len(controls))
	for _, c := range controls {
		if c != nil {
			sorted = append(sorted, c)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	d := xxhash.New()
	d.WriteString("controls:")
	d.WriteString(strconv.Itoa(len(sorted)))
	for _, c := range sorted {
		d.WriteString("\x1e")
		d.WriteString(c.ID)
		d.WriteString("\x1f")
		d.WriteString(c.Type)
		d.WriteString("\x1f")
		d.WriteString(c.Name)
		d.WriteString("\x1f")
		d.WriteString(c.SectionID)
		d.WriteString("\x1f")
		d.WriteString(strconv.Itoa(c.Position.Y))
		d.WriteString("\x1f")
		d.WriteString(strconv.Itoa(len(c.Properties)))
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
