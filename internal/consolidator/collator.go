package consolidator

import (
	"strings"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
)

// Collator merges already-consolidated batches without re-classifying.
type Collator struct {
	order TermOrder
}

// NewCollator returns a Collator ordering terms by order (nil orders terms
// lexically).
func NewCollator(order TermOrder) *Collator {
	return &Collator{order: order}
}

// Collate merges batches with the same fold Consolidate uses. The result is
// a function of the union of the batches only: collating a batch with itself,
// reordering batches or regrouping them yields the same records.
// Records with a blank domain carry no key and are ignored.
func (c *Collator) Collate(batches ...[]domain.ConsolidatedRecord) []domain.ConsolidatedRecord {
	g := newGroup(c.order)
	for _, batch := range batches {
		for i := range batch {
			key := batch[i].Key()
			if key == "" {
				continue
			}
			g.get(key, strings.TrimSpace(batch[i].Domain)).addRecord(&batch[i])
		}
	}
	return g.records()
}
